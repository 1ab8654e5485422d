package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/approaches/internal/model"
)

// ExportCatalog builds an export of every lesson with its slides and question sets.
func (s *Store) ExportCatalog(title string) (model.CatalogExport, error) {
	summaries, err := s.ListLessons()
	if err != nil {
		return model.CatalogExport{}, fmt.Errorf("list lessons: %w", err)
	}

	out := model.CatalogExport{
		Title:      title,
		ExportedAt: time.Now().UTC(),
		Lessons:    make([]model.LessonExport, 0, len(summaries)),
	}
	for _, ls := range summaries {
		l, err := s.GetLesson(ls.ID)
		if err != nil {
			return model.CatalogExport{}, fmt.Errorf("get lesson %d: %w", ls.ID, err)
		}
		if l == nil {
			continue
		}
		var n int
		for _, set := range l.Sets {
			n += len(set.Questions)
		}
		out.Lessons = append(out.Lessons, model.LessonExport{Lesson: *l, QuestionCount: n})
	}

	if out.Imports, err = s.ListImportedFiles(); err != nil {
		return model.CatalogExport{}, fmt.Errorf("list imported files: %w", err)
	}
	return out, nil
}
