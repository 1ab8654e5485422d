package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/approaches/internal/handler/views"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
	"github.com/pavelanni/approaches/internal/model"
)

const (
	sessionCookieName = "session"
	csrfCookieName    = "csrf_token"
)

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

func (h *Handler) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: false,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// csrfMiddleware issues a token on safe requests and checks it on every other
// one. Full-page posts rotate the token; htmx posts keep it so the other forms
// on the page stay valid.
func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			token, err := generateCSRFToken()
			if err != nil {
				slog.Error("failed to generate CSRF token", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			h.setCSRFCookie(w, token)
			ctx := model.ContextWithCSRFToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			slog.Warn("CSRF cookie missing")
			http.Error(w, "csrf token missing", http.StatusForbidden)
			return
		}

		formToken := r.FormValue("csrf_token")
		if formToken == "" {
			slog.Warn("CSRF form token missing")
			http.Error(w, "csrf token missing", http.StatusForbidden)
			return
		}

		if len(formToken) != len(cookie.Value) || subtle.ConstantTimeCompare([]byte(formToken), []byte(cookie.Value)) != 1 {
			slog.Warn("CSRF token mismatch")
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		token := cookie.Value
		if !isHTMX(r) {
			token, err = generateCSRFToken()
			if err != nil {
				slog.Error("failed to generate CSRF token", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			h.setCSRFCookie(w, token)
		}

		ctx := model.ContextWithCSRFToken(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// presenterMiddleware marks requests carrying a valid presenter session.
// It never blocks; requireAuth does.
func (h *Handler) presenterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		authSess, err := h.store.GetAuthSession(cookie.Value)
		if err != nil {
			slog.Error("failed to get auth session", "error", err)
		}
		if authSess != nil {
			r = r.WithContext(model.ContextWithPresenter(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth lets only the logged-in presenter through. Without a presenter
// password the protected routes do not exist.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.loginEnabled() {
			http.NotFound(w, r)
			return
		}
		if !model.IsPresenter(r.Context()) {
			h.redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) loginEnabled() bool {
	hash, err := h.store.PresenterPasswordHash()
	if err != nil {
		slog.Error("failed to read presenter password", "error", err)
		return false
	}
	return hash != ""
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginPath := h.path("/login")
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", loginPath)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.LoginPage("").Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	hash, err := h.store.PresenterPasswordHash()
	if err != nil {
		slog.Error("failed to read presenter password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if hash == "" {
		http.NotFound(w, r)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(r.FormValue("password"))); err != nil {
		slog.Warn("presenter login failed", "remote", r.RemoteAddr)
		h.renderLoginError(w, r)
		return
	}

	token, err := h.store.CreateAuthSession()
	if err != nil {
		slog.Error("failed to create auth session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	slog.Info("presenter logged in")
	http.Redirect(w, r, h.path("/admin/lessons"), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		_ = h.store.DeleteAuthSession(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	if err := views.LoginPage(appI18n.T(r.Context(), "InvalidPassword")).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
