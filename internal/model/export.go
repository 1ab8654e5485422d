package model

import "time"

// CatalogExport is the top-level JSON structure for the lesson catalog export.
type CatalogExport struct {
	Title      string         `json:"title"`
	ExportedAt time.Time      `json:"exported_at"`
	Lessons    []LessonExport `json:"lessons"`
	Imports    []ImportedFile `json:"imports"`
}

// LessonExport holds one lesson with its slides and question sets.
type LessonExport struct {
	Lesson
	QuestionCount int `json:"question_count"`
}

// ImportedFile records a lesson file that was loaded into the catalog.
type ImportedFile struct {
	Path       string    `json:"path"`
	Hash       string    `json:"hash"`
	ImportedAt time.Time `json:"imported_at"`
}
