package model

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/pavelanni/approaches/internal/assess"
)

// DisplayMode selects between the browsing layout and the full-screen presentation layout.
type DisplayMode string

const (
	// ModeNormal is the default browsing layout with the lesson sidebar.
	ModeNormal DisplayMode = "normal"
	// ModePresent is the distraction-free presentation layout.
	ModePresent DisplayMode = "present"
)

// ParseDisplayMode maps a query value to a mode. Anything unknown is normal.
func ParseDisplayMode(s string) DisplayMode {
	if s == string(ModePresent) {
		return ModePresent
	}
	return ModeNormal
}

// WidgetKind names the interactive widget hosted on a slide.
type WidgetKind string

const (
	WidgetNone               WidgetKind = ""
	WidgetDoNow              WidgetKind = "do_now"
	WidgetUnderstandingCheck WidgetKind = "understanding_check"
	WidgetWalkthrough        WidgetKind = "walkthrough"
)

// SetName identifies a question set within a lesson.
type SetName string

const (
	SetDoNow              SetName = "do_now"
	SetUnderstandingCheck SetName = "understanding_check"
	SetWalkthrough        SetName = "walkthrough"
)

// ParseSetName returns the set for a URL segment.
func ParseSetName(s string) (SetName, bool) {
	switch SetName(s) {
	case SetDoNow, SetUnderstandingCheck, SetWalkthrough:
		return SetName(s), true
	}
	return "", false
}

// Batch reports whether the set is answered all at once.
func (n SetName) Batch() bool { return n == SetDoNow }

// Theme is the per-lesson accent color.
type Theme struct {
	Color string `json:"color" yaml:"color"`
	Name  string `json:"name" yaml:"name"`
}

var themeHex = map[string]string{
	"indigo": "#4f46e5",
	"cyan":   "#0891b2",
	"amber":  "#d97706",
	"blue":   "#2563eb",
	"green":  "#16a34a",
	"purple": "#9333ea",
	"pink":   "#db2777",
	"teal":   "#0d9488",
	"slate":  "#475569",
}

// ThemeColors lists the known theme color names in sorted order.
func ThemeColors() []string {
	return slices.Sorted(maps.Keys(themeHex))
}

// Hex returns the accent color as a CSS hex value. Unknown colors fall back to slate.
func (t Theme) Hex() string {
	if h, ok := themeHex[t.Color]; ok {
		return h
	}
	return themeHex["slate"]
}

// Slide is one step of a lesson.
type Slide struct {
	Position int        `json:"position"`
	Phase    string     `json:"phase"`
	Title    string     `json:"title"`
	Duration string     `json:"duration,omitempty"`
	Body     string     `json:"body,omitempty"`
	Widget   WidgetKind `json:"widget,omitempty"`
}

// QuestionSet is an ordered bank of questions attached to a lesson.
type QuestionSet struct {
	Name      SetName           `json:"name"`
	Title     string            `json:"title,omitempty"`
	Questions []assess.Question `json:"questions"`
}

// Lesson is a fixed sequence of slides plus its question sets.
type Lesson struct {
	ID       int64                   `json:"id"`
	Slug     string                  `json:"slug"`
	Title    string                  `json:"title"`
	Subtitle string                  `json:"subtitle"`
	Theme    Theme                   `json:"theme"`
	Slides   []Slide                 `json:"slides"`
	Sets     map[SetName]QuestionSet `json:"sets"`
	// Version counts imports of this id. Zero until the lesson is stored.
	Version int64 `json:"-"`
}

// Set returns the named question set, if the lesson has one.
func (l Lesson) Set(name SetName) (QuestionSet, bool) {
	qs, ok := l.Sets[name]
	return qs, ok && len(qs.Questions) > 0
}

// LessonSummary is the row shown in the lesson list.
type LessonSummary struct {
	ID         int64  `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Theme      Theme  `json:"theme"`
	SlideCount int    `json:"slide_count"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	ShuffleOptions bool          // Randomize option order per attempt
	BasePath       string        // URL prefix for sub-path deployments (e.g. "/psych")
	SecureCookies  bool          // Set Secure flag on cookies (disable for local dev)
	SessionTTL     time.Duration // Idle time before an in-memory quiz attempt is dropped
}

// AuthSession represents a presenter login session.
type AuthSession struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type presenterCtxKey struct{}

// ContextWithPresenter marks the request as coming from the logged-in presenter.
func ContextWithPresenter(ctx context.Context) context.Context {
	return context.WithValue(ctx, presenterCtxKey{}, true)
}

// IsPresenter reports whether the presenter is logged in for this request.
func IsPresenter(ctx context.Context) bool {
	ok, _ := ctx.Value(presenterCtxKey{}).(bool)
	return ok
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
