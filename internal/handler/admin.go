package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pavelanni/approaches/internal/content"
	"github.com/pavelanni/approaches/internal/handler/views"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
	"github.com/pavelanni/approaches/internal/store"
)

const maxLessonUpload = 1 << 20

// uploadKeyPrefix keeps uploaded file hashes apart from the lesson files
// imported at startup, which are keyed by their bare name.
const uploadKeyPrefix = "upload:"

func uploadKey(filename string) string {
	return uploadKeyPrefix + filename
}

func (h *Handler) adminView(msg string, warning bool) (views.AdminView, error) {
	v := views.AdminView{Message: msg, Warning: warning}
	lessons, err := h.store.ListLessons()
	if err != nil {
		return v, err
	}
	for _, ls := range lessons {
		n, err := h.store.QuestionCount(ls.ID)
		if err != nil {
			return v, err
		}
		v.Lessons = append(v.Lessons, views.AdminLesson{LessonSummary: ls, Questions: n})
	}
	if v.Imports, err = h.store.ListImportedFiles(); err != nil {
		return v, err
	}
	return v, nil
}

func (h *Handler) renderAdmin(w http.ResponseWriter, r *http.Request, status int, msg string, warning bool) {
	v, err := h.adminView(msg, warning)
	if err != nil {
		slog.Error("failed to load admin view", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.AdminLessonsPage(v).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleAdminLessonsPage(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, r, http.StatusOK, "", false)
}

func (h *Handler) handleUploadLesson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxLessonUpload); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("lesson_file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if header.Size > maxLessonUpload {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	hashBytes := sha256.Sum256(data)
	hash := hex.EncodeToString(hashBytes[:])

	key := uploadKey(header.Filename)
	storedHash, err := h.store.GetImportedFileHash(key)
	if err != nil {
		slog.Error("failed to check import status", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if storedHash == hash {
		msg := appI18n.Td(r.Context(), "FileUnchanged", map[string]any{"File": header.Filename})
		h.renderAdmin(w, r, http.StatusOK, msg, true)
		return
	}

	lesson, err := content.Parse(header.Filename, data)
	if err != nil {
		slog.Warn("rejected lesson upload", "filename", header.Filename, "error", err)
		h.renderAdmin(w, r, http.StatusBadRequest, err.Error(), true)
		return
	}

	if err := h.store.ImportLesson(lesson); err != nil {
		var taken *store.SlugTakenError
		if errors.As(err, &taken) {
			slog.Warn("rejected lesson upload", "filename", header.Filename, "error", err)
			msg := appI18n.Td(r.Context(), "SlugTaken", map[string]any{"Slug": taken.Slug, "ID": taken.LessonID})
			h.renderAdmin(w, r, http.StatusBadRequest, msg, true)
			return
		}
		slog.Error("failed to import lesson", "filename", header.Filename, "error", err)
		http.Error(w, "failed to import lesson: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.store.SetImportedFileHash(key, hash); err != nil {
		slog.Error("failed to record import", "error", err)
	}
	h.attempts.DropLesson(lesson.ID)

	slog.Info("uploaded lesson via admin", "filename", header.Filename, "lesson", lesson.ID, "slides", len(lesson.Slides))

	msg := appI18n.Td(r.Context(), "LessonImported", map[string]any{"ID": lesson.ID, "Title": lesson.Title})
	h.renderAdmin(w, r, http.StatusOK, msg, false)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	exp, err := h.store.ExportCatalog(appI18n.T(r.Context(), "AppTitle"))
	if err != nil {
		slog.Error("failed to export catalog", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="lessons.json"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		slog.Error("failed to encode export", "error", err)
	}
}
