package main

import (
	"testing"

	"github.com/pavelanni/approaches/internal/content"
	"github.com/pavelanni/approaches/internal/model"
	"github.com/pavelanni/approaches/internal/store"
)

func newLoadFixture(t *testing.T) (*store.Store, *content.Loader) {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	lessons, err := content.Load(content.Embedded())
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	return db, lessons
}

func TestLoadLessonsSkipsUnchangedFiles(t *testing.T) {
	db, lessons := newLoadFixture(t)
	for range 2 {
		if err := loadLessons(db, lessons); err != nil {
			t.Fatalf("loadLessons: %v", err)
		}
	}
	n, err := db.LessonCount()
	if err != nil {
		t.Fatalf("LessonCount: %v", err)
	}
	if n != len(lessons.Lessons()) {
		t.Errorf("expected %d lessons, got %d", len(lessons.Lessons()), n)
	}
	l, err := db.GetLesson(1)
	if err != nil || l == nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if l.Version != 1 {
		t.Errorf("expected version 1 after an unchanged reload, got %d", l.Version)
	}
}

func TestLoadLessonsSkipsTakenSlug(t *testing.T) {
	db, lessons := newLoadFixture(t)
	squatter := model.Lesson{ID: 99, Slug: "origins", Title: "Uploaded", Theme: model.Theme{Color: "slate"}}
	if err := db.ImportLesson(squatter); err != nil {
		t.Fatalf("ImportLesson: %v", err)
	}

	if err := loadLessons(db, lessons); err != nil {
		t.Fatalf("expected the clashing file to be skipped, got %v", err)
	}
	if l, _ := db.GetLesson(1); l != nil {
		t.Errorf("expected lesson 1 skipped, got %q", l.Title)
	}
	if l, _ := db.GetLesson(2); l == nil {
		t.Error("expected lesson 2 imported")
	}
	hash, err := db.GetImportedFileHash("01-origins.yaml")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Error("expected no hash recorded for a skipped file")
	}
}
