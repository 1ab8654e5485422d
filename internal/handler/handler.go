package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/handler/views"
	"github.com/pavelanni/approaches/internal/model"
	"github.com/pavelanni/approaches/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	attempts *Registry
	config   model.AppConfig
}

// New creates a new Handler.
func New(s *store.Store, reg *Registry, cfg model.AppConfig) (*Handler, error) {
	if s == nil || reg == nil {
		return nil, fmt.Errorf("handler: store and registry are required")
	}
	return &Handler{store: s, attempts: reg, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Use(h.presenterMiddleware)
		r.Use(h.visitorMiddleware)

		r.Get("/", h.handleIndex)
		r.Get("/lessons/{lessonID}", h.handleLesson)
		r.Get("/lessons/{lessonID}/slides/{slide}", h.handleSlide)
		r.Post("/lessons/{lessonID}/quiz/{set}/{action}", h.handleQuizAction)
		r.Post("/lessons/{lessonID}/donow/{action}", h.handleDoNowAction)

		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/admin/lessons", h.handleAdminLessonsPage)
			r.Post("/admin/lessons", h.handleUploadLesson)
			r.Get("/admin/export", h.handleExport)
		})
	})
}

// BasePathMiddleware stores the configured base path in the request context
// so views can build links.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.LessonCount(); err != nil {
		slog.Error("health check failed", "error", err)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.store.ListLessons()
	if err != nil {
		slog.Error("failed to list lessons", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.IndexPage(lessons).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// loadLesson resolves the lessonID URL parameter, writing the error response
// itself when it returns nil.
func (h *Handler) loadLesson(w http.ResponseWriter, r *http.Request) *model.Lesson {
	id, err := strconv.ParseInt(chi.URLParam(r, "lessonID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid lesson ID", http.StatusBadRequest)
		return nil
	}
	lesson, err := h.store.GetLesson(id)
	if err != nil {
		slog.Error("failed to get lesson", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	if lesson == nil {
		http.NotFound(w, r)
		return nil
	}
	return lesson
}

func (h *Handler) slideURL(lessonID int64, slide int, mode model.DisplayMode) string {
	u := h.path(fmt.Sprintf("/lessons/%d/slides/%d", lessonID, slide))
	if mode == model.ModePresent {
		u += "?" + url.Values{"mode": {string(mode)}}.Encode()
	}
	return u
}

func (h *Handler) handleLesson(w http.ResponseWriter, r *http.Request) {
	lesson := h.loadLesson(w, r)
	if lesson == nil {
		return
	}
	mode := model.ParseDisplayMode(r.URL.Query().Get("mode"))
	http.Redirect(w, r, h.slideURL(lesson.ID, 0, mode), http.StatusSeeOther)
}

func (h *Handler) handleSlide(w http.ResponseWriter, r *http.Request) {
	lesson := h.loadLesson(w, r)
	if lesson == nil {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "slide"))
	if err != nil {
		http.Error(w, "invalid slide", http.StatusBadRequest)
		return
	}
	if idx < 0 || idx >= len(lesson.Slides) {
		http.NotFound(w, r)
		return
	}
	mode := model.ParseDisplayMode(r.URL.Query().Get("mode"))

	view := newSlideView(*lesson, idx, mode)
	if mode == model.ModeNormal {
		if view.Lessons, err = h.store.ListLessons(); err != nil {
			slog.Error("failed to list lessons", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if widget := lesson.Slides[idx].Widget; widget != model.WidgetNone {
		if err := h.attachWidget(r, &view, model.SetName(widget)); err != nil {
			slog.Error("failed to start quiz", "lesson", lesson.ID, "set", widget, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.SlidePage(view).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// newSlideView fills the navigation fields. Previous and next are clamped to
// the lesson.
func newSlideView(lesson model.Lesson, idx int, mode model.DisplayMode) views.SlideView {
	total := len(lesson.Slides)
	return views.SlideView{
		Lesson:   lesson,
		Slide:    lesson.Slides[idx],
		Index:    idx,
		Total:    total,
		Progress: (idx + 1) * 100 / total,
		Prev:     max(idx-1, 0),
		Next:     min(idx+1, total-1),
		HasPrev:  idx > 0,
		HasNext:  idx < total-1,
		Mode:     mode,
	}
}

func (h *Handler) attachWidget(r *http.Request, view *views.SlideView, name model.SetName) error {
	set, ok := view.Lesson.Set(name)
	if !ok {
		return nil
	}
	key := AttemptKey{
		Visitor:  visitorFromContext(r.Context()),
		LessonID: view.Lesson.ID,
		Version:  view.Lesson.Version,
		Set:      name,
	}
	ref := widgetRef{lessonID: view.Lesson.ID, set: set, slide: view.Index, mode: view.Mode}
	if name.Batch() {
		return h.attempts.Batch(key, set.Questions, func(b *assess.Batch) error {
			v := doNowView(b, ref)
			view.DoNow = &v
			return nil
		})
	}
	return h.attempts.Session(key, set.Questions, func(s *assess.Session) error {
		v := quizView(s, ref)
		view.Quiz = &v
		return nil
	})
}
