// Package content loads lesson files: YAML documents describing a lesson's
// slides and its question sets. Files are checked against an embedded JSON
// schema before they are decoded, then against the assessment engine's own
// question rules.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/model"
)

// ErrInvalidLesson wraps every validation failure reported by Parse.
var ErrInvalidLesson = errors.New("invalid lesson")

//go:embed schema.json
var schemaJSON []byte

var lessonSchema = mustSchema(schemaJSON)

func mustSchema(b []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("content: lesson schema: %v", err))
	}
	return s
}

type lessonDoc struct {
	ID                 int64             `yaml:"id"`
	Slug               string            `yaml:"slug"`
	Title              string            `yaml:"title"`
	Subtitle           string            `yaml:"subtitle"`
	Theme              model.Theme       `yaml:"theme"`
	Slides             []slideDoc        `yaml:"slides"`
	DoNow              []assess.Question `yaml:"do_now"`
	UnderstandingCheck []assess.Question `yaml:"understanding_check"`
	Walkthrough        *walkthroughDoc   `yaml:"walkthrough"`
}

type slideDoc struct {
	Phase    string           `yaml:"phase"`
	Title    string           `yaml:"title"`
	Duration string           `yaml:"duration"`
	Body     string           `yaml:"body"`
	Widget   model.WidgetKind `yaml:"widget"`
}

type walkthroughDoc struct {
	Title     string            `yaml:"title"`
	Questions []assess.Question `yaml:"questions"`
}

// Parse validates and decodes one lesson file. name is used in error messages.
func Parse(name string, data []byte) (model.Lesson, error) {
	if err := validateSchema(data); err != nil {
		return model.Lesson{}, fmt.Errorf("%s: %w", name, err)
	}

	var doc lessonDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return model.Lesson{}, fmt.Errorf("%s: parse yaml: %w", name, err)
	}

	lesson := doc.lesson()
	if err := Validate(lesson); err != nil {
		return model.Lesson{}, fmt.Errorf("%s: %w", name, err)
	}
	return lesson, nil
}

func validateSchema(data []byte) error {
	var raw any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", ErrInvalidLesson)
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return fmt.Errorf("%w: multiple documents are not supported", ErrInvalidLesson)
		}
		return fmt.Errorf("parse yaml: %w", err)
	}

	res, err := lessonSchema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidLesson, strings.Join(msgs, "; "))
}

func (d lessonDoc) lesson() model.Lesson {
	l := model.Lesson{
		ID:       d.ID,
		Slug:     d.Slug,
		Title:    d.Title,
		Subtitle: d.Subtitle,
		Theme:    d.Theme,
		Slides:   make([]model.Slide, len(d.Slides)),
		Sets:     make(map[model.SetName]model.QuestionSet),
	}
	for i, s := range d.Slides {
		l.Slides[i] = model.Slide{
			Position: i,
			Phase:    s.Phase,
			Title:    s.Title,
			Duration: s.Duration,
			Body:     s.Body,
			Widget:   s.Widget,
		}
	}
	if len(d.DoNow) > 0 {
		l.Sets[model.SetDoNow] = model.QuestionSet{Name: model.SetDoNow, Title: "Do Now", Questions: d.DoNow}
	}
	if len(d.UnderstandingCheck) > 0 {
		l.Sets[model.SetUnderstandingCheck] = model.QuestionSet{
			Name:      model.SetUnderstandingCheck,
			Title:     "Understanding Check",
			Questions: d.UnderstandingCheck,
		}
	}
	if d.Walkthrough != nil && len(d.Walkthrough.Questions) > 0 {
		l.Sets[model.SetWalkthrough] = model.QuestionSet{
			Name:      model.SetWalkthrough,
			Title:     d.Walkthrough.Title,
			Questions: d.Walkthrough.Questions,
		}
	}
	return l
}

// Validate checks the rules a schema cannot express: every set passes the
// engine's question checks and every slide widget has a set behind it.
func Validate(l model.Lesson) error {
	if len(l.Slides) == 0 {
		return fmt.Errorf("%w: lesson %d has no slides", ErrInvalidLesson, l.ID)
	}
	for name, set := range l.Sets {
		if err := assess.ValidateQuestions(set.Questions); err != nil {
			return fmt.Errorf("%w: set %s: %w", ErrInvalidLesson, name, err)
		}
	}
	for _, s := range l.Slides {
		if s.Widget == model.WidgetNone {
			continue
		}
		if _, ok := l.Set(model.SetName(s.Widget)); !ok {
			return fmt.Errorf("%w: slide %q uses widget %s but the lesson has no such set",
				ErrInvalidLesson, s.Title, s.Widget)
		}
	}
	return nil
}
