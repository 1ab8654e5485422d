package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/model"
)

const visitorCookieName = "visitor"

// AttemptKey identifies one visitor's attempt at one question set of one
// imported version of a lesson.
type AttemptKey struct {
	Visitor  string
	LessonID int64
	Version  int64
	Set      model.SetName
}

type attempt struct {
	mu       sync.Mutex
	session  *assess.Session
	batch    *assess.Batch
	lastUsed time.Time
}

// Registry keeps the in-memory quiz attempts of every visitor. Attempts are
// never shared between visitors and are dropped after ttl of inactivity.
type Registry struct {
	mu       sync.Mutex
	attempts map[AttemptKey]*attempt
	ttl      time.Duration
	src      assess.Rand
	now      func() time.Time
}

// NewRegistry creates a registry. src must be safe for concurrent use;
// nil uses the global generator.
func NewRegistry(ttl time.Duration, src assess.Rand) *Registry {
	return &Registry{
		attempts: make(map[AttemptKey]*attempt),
		ttl:      ttl,
		src:      src,
		now:      time.Now,
	}
}

func (r *Registry) get(key AttemptKey) *attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[key]
	if !ok {
		a = &attempt{}
		r.attempts[key] = a
	}
	a.lastUsed = r.now()
	return a
}

// Session runs fn on the visitor's per-question attempt, starting one if needed.
// Calls for the same key are serialized.
func (r *Registry) Session(key AttemptKey, questions []assess.Question, fn func(*assess.Session) error) error {
	a := r.get(key)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		s, err := assess.New(questions, r.src)
		if err != nil {
			return err
		}
		a.session = s
	}
	return fn(a.session)
}

// Batch runs fn on the visitor's check-all attempt, starting one if needed.
func (r *Registry) Batch(key AttemptKey, questions []assess.Question, fn func(*assess.Batch) error) error {
	a := r.get(key)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.batch == nil {
		b, err := assess.NewBatch(questions, r.src)
		if err != nil {
			return err
		}
		a.batch = b
	}
	return fn(a.batch)
}

// DropLesson forgets every attempt at a lesson, used after it is re-imported.
func (r *Registry) DropLesson(lessonID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.attempts {
		if k.LessonID == lessonID {
			delete(r.attempts, k)
		}
	}
}

// Len is the number of live attempts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

// Sweep drops attempts idle for longer than the ttl and returns how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	n := 0
	for k, a := range r.attempts {
		if a.lastUsed.Before(cutoff) {
			delete(r.attempts, k)
			n++
		}
	}
	return n
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("swept idle quiz attempts", "count", n, "remaining", r.Len())
			}
		}
	}
}

type visitorCtxKey struct{}

func visitorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(visitorCtxKey{}).(string)
	return v
}

// visitorMiddleware gives every browser a stable anonymous id.
func (h *Handler) visitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(visitorCookieName); err == nil {
			if u, err := uuid.Parse(c.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     visitorCookieName,
				Value:    id,
				Path:     h.cookiePath(),
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				Secure:   h.config.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), visitorCtxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
