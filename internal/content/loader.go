package content

import (
	"cmp"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/pavelanni/approaches/internal/model"
)

//go:embed lessons/*.yaml
var embedded embed.FS

// Embedded returns the lesson files shipped with the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "lessons")
	if err != nil {
		panic(err)
	}
	return sub
}

// File is one lesson file as read from disk, kept for hash-tracked imports.
type File struct {
	Path     string
	Data     []byte
	LessonID int64
}

// Loader holds the lessons parsed from a directory of YAML files.
type Loader struct {
	lessons map[int64]model.Lesson
	files   []File
}

// Load parses every *.yaml and *.yml file at the top of fsys. Any invalid file
// fails the whole load, as do two files claiming the same id or slug.
func Load(fsys fs.FS) (*Loader, error) {
	l := &Loader{lessons: make(map[int64]model.Lesson)}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading lessons: %w", err)
	}

	var errs []error
	slugs := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !isLessonFile(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", e.Name(), err))
			continue
		}
		lesson, err := Parse(e.Name(), data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := l.lessons[lesson.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: %w: id %d already used by %q", e.Name(), ErrInvalidLesson, lesson.ID, prev.Slug))
			continue
		}
		if prev, dup := slugs[lesson.Slug]; dup {
			errs = append(errs, fmt.Errorf("%s: %w: slug %q already used by %s", e.Name(), ErrInvalidLesson, lesson.Slug, prev))
			continue
		}
		slugs[lesson.Slug] = e.Name()
		l.lessons[lesson.ID] = lesson
		l.files = append(l.files, File{Path: e.Name(), Data: data, LessonID: lesson.ID})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("loading lessons: %w", err)
	}
	if len(l.lessons) == 0 {
		return nil, errors.New("loading lessons: no lesson files found")
	}

	slog.Info("lessons loaded", "count", len(l.lessons))
	return l, nil
}

// Check parses every lesson file in fsys and reports each failure
// separately. It returns the number of files that parsed.
func Check(fsys fs.FS) (int, []error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, []error{err}
	}
	var ok int
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !isLessonFile(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := Parse(e.Name(), data); err != nil {
			errs = append(errs, err)
			continue
		}
		ok++
	}
	return ok, errs
}

func isLessonFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Lesson returns a lesson by id.
func (l *Loader) Lesson(id int64) (model.Lesson, bool) {
	lesson, ok := l.lessons[id]
	return lesson, ok
}

// Lessons returns all lessons ordered by id.
func (l *Loader) Lessons() []model.Lesson {
	out := make([]model.Lesson, 0, len(l.lessons))
	for _, lesson := range l.lessons {
		out = append(out, lesson)
	}
	slices.SortFunc(out, func(a, b model.Lesson) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Files returns the raw files the lessons were parsed from, in directory order.
func (l *Loader) Files() []File {
	return slices.Clone(l.files)
}
