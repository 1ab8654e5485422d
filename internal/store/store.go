package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lessons (
		id INTEGER PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		subtitle TEXT NOT NULL DEFAULT '',
		theme_color TEXT NOT NULL,
		theme_name TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS slides (
		lesson_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		phase TEXT NOT NULL,
		title TEXT NOT NULL,
		duration TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		widget TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (lesson_id, position),
		FOREIGN KEY (lesson_id) REFERENCES lessons(id)
	);

	CREATE TABLE IF NOT EXISTS question_sets (
		lesson_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (lesson_id, name),
		FOREIGN KEY (lesson_id) REFERENCES lessons(id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lesson_id INTEGER NOT NULL,
		set_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		question_key TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		scenario TEXT NOT NULL DEFAULT '',
		prompt TEXT NOT NULL,
		options TEXT NOT NULL,
		correct_index INTEGER NOT NULL,
		feedback TEXT NOT NULL DEFAULT '',
		UNIQUE (lesson_id, set_name, question_key),
		FOREIGN KEY (lesson_id, set_name) REFERENCES question_sets(lesson_id, name)
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SlugTakenError is returned when an imported lesson reuses the slug of a
// lesson with a different id.
type SlugTakenError struct {
	Slug     string
	LessonID int64
}

func (e *SlugTakenError) Error() string {
	return fmt.Sprintf("slug %q is already used by lesson %d", e.Slug, e.LessonID)
}

// ImportLesson stores a lesson, replacing any earlier version with the same id.
// Every replacement bumps the lesson version.
func (s *Store) ImportLesson(l model.Lesson) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner int64
	err = tx.QueryRow(`SELECT id FROM lessons WHERE slug = ? AND id != ?`, l.Slug, l.ID).Scan(&owner)
	if err == nil {
		return &SlugTakenError{Slug: l.Slug, LessonID: owner}
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check slug %q: %w", l.Slug, err)
	}

	for _, table := range []string{"questions", "question_sets", "slides"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE lesson_id = ?`, l.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO lessons (id, slug, title, subtitle, theme_color, theme_name, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET slug = excluded.slug, title = excluded.title,
		 subtitle = excluded.subtitle, theme_color = excluded.theme_color,
		 theme_name = excluded.theme_name, version = lessons.version + 1,
		 updated_at = excluded.updated_at`,
		l.ID, l.Slug, l.Title, l.Subtitle, l.Theme.Color, l.Theme.Name, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert lesson %d: %w", l.ID, err)
	}

	for i, sl := range l.Slides {
		_, err := tx.Exec(
			`INSERT INTO slides (lesson_id, position, phase, title, duration, body, widget)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, i, sl.Phase, sl.Title, sl.Duration, sl.Body, sl.Widget,
		)
		if err != nil {
			return fmt.Errorf("insert slide %d: %w", i, err)
		}
	}

	for name, set := range l.Sets {
		if _, err := tx.Exec(
			`INSERT INTO question_sets (lesson_id, name, title) VALUES (?, ?, ?)`,
			l.ID, name, set.Title,
		); err != nil {
			return fmt.Errorf("insert set %s: %w", name, err)
		}
		for i, q := range set.Questions {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}
			_, err = tx.Exec(
				`INSERT INTO questions (lesson_id, set_name, position, question_key, kind, scenario, prompt, options, correct_index, feedback)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				l.ID, name, i, q.ID, q.Kind, q.Scenario, q.Prompt, string(opts), q.CorrectIndex, q.Feedback,
			)
			if err != nil {
				return fmt.Errorf("insert question %s/%s: %w", name, q.ID, err)
			}
		}
	}

	return tx.Commit()
}

// ListLessons returns the lesson list ordered by id.
func (s *Store) ListLessons() ([]model.LessonSummary, error) {
	rows, err := s.db.Query(
		`SELECT l.id, l.slug, l.title, l.subtitle, l.theme_color, l.theme_name,
		        (SELECT COUNT(*) FROM slides WHERE lesson_id = l.id)
		 FROM lessons l ORDER BY l.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lessons []model.LessonSummary
	for rows.Next() {
		var ls model.LessonSummary
		if err := rows.Scan(&ls.ID, &ls.Slug, &ls.Title, &ls.Subtitle, &ls.Theme.Color, &ls.Theme.Name, &ls.SlideCount); err != nil {
			return nil, err
		}
		lessons = append(lessons, ls)
	}
	return lessons, rows.Err()
}

// GetLesson returns a lesson with its slides and question sets, or nil if it does not exist.
func (s *Store) GetLesson(id int64) (*model.Lesson, error) {
	l := model.Lesson{Sets: make(map[model.SetName]model.QuestionSet)}
	err := s.db.QueryRow(
		`SELECT id, slug, title, subtitle, theme_color, theme_name, version FROM lessons WHERE id = ?`, id,
	).Scan(&l.ID, &l.Slug, &l.Title, &l.Subtitle, &l.Theme.Color, &l.Theme.Name, &l.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if l.Slides, err = s.slides(id); err != nil {
		return nil, err
	}

	titles, err := s.setTitles(id)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT set_name, question_key, kind, scenario, prompt, options, correct_index, feedback
		 FROM questions WHERE lesson_id = ? ORDER BY set_name, position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name model.SetName
			q    assess.Question
			opts string
		)
		if err := rows.Scan(&name, &q.ID, &q.Kind, &q.Scenario, &q.Prompt, &opts, &q.CorrectIndex, &q.Feedback); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("question %s/%s options: %w", name, q.ID, err)
		}
		set := l.Sets[name]
		set.Name = name
		set.Title = titles[name]
		set.Questions = append(set.Questions, q)
		l.Sets[name] = set
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) slides(lessonID int64) ([]model.Slide, error) {
	rows, err := s.db.Query(
		`SELECT position, phase, title, duration, body, widget FROM slides WHERE lesson_id = ? ORDER BY position`, lessonID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slides []model.Slide
	for rows.Next() {
		var sl model.Slide
		if err := rows.Scan(&sl.Position, &sl.Phase, &sl.Title, &sl.Duration, &sl.Body, &sl.Widget); err != nil {
			return nil, err
		}
		slides = append(slides, sl)
	}
	return slides, rows.Err()
}

func (s *Store) setTitles(lessonID int64) (map[model.SetName]string, error) {
	rows, err := s.db.Query(`SELECT name, title FROM question_sets WHERE lesson_id = ?`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	titles := make(map[model.SetName]string)
	for rows.Next() {
		var name model.SetName
		var title string
		if err := rows.Scan(&name, &title); err != nil {
			return nil, err
		}
		titles[name] = title
	}
	return titles, rows.Err()
}

// LessonCount returns the number of lessons in the database.
func (s *Store) LessonCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM lessons`).Scan(&count)
	return count, err
}

// QuestionCount returns the number of questions across all sets of a lesson.
func (s *Store) QuestionCount(lessonID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions WHERE lesson_id = ?`, lessonID).Scan(&count)
	return count, err
}
