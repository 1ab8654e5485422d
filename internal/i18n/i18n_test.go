package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pavelanni/approaches/internal/assess"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "AppTitle"); got != "Approaches in Psychology" {
		t.Errorf("T(AppTitle) = %q, want 'Approaches in Psychology'", got)
	}
	if got := T(ctx, "TryAgain"); got != "Try again" {
		t.Errorf("T(TryAgain) = %q, want 'Try again'", got)
	}
}

func TestTranslateSpanish(t *testing.T) {
	ctx := initLang(t, "es")

	if got := T(ctx, "AppTitle"); got != "Enfoques de la psicología" {
		t.Errorf("T(AppTitle) = %q, want 'Enfoques de la psicología'", got)
	}
}

func TestUnsupportedLanguageFallsBack(t *testing.T) {
	ctx := initLang(t, "de")

	if got := T(ctx, "Next"); got != "Next" {
		t.Errorf("T(Next) = %q, want 'Next'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "QuestionsCount", 1); got != "1 question" {
		t.Errorf("Tp(QuestionsCount, 1) = %q, want '1 question'", got)
	}
	if got := Tp(ctx, "QuestionsCount", 5); got != "5 questions" {
		t.Errorf("Tp(QuestionsCount, 5) = %q, want '5 questions'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "ScoreSummary", map[string]any{"Score": 2, "Total": 3, "Percentage": 67})
	if got != "You scored 2 out of 3 (67%)" {
		t.Errorf("Td(ScoreSummary) = %q, want 'You scored 2 out of 3 (67%%)'", got)
	}
}

func TestGradeLabels(t *testing.T) {
	ctx := initLang(t, "en")

	tests := []struct {
		grade assess.Grade
		want  string
	}{
		{assess.GradeExcellent, "Excellent!"},
		{assess.GradeGood, "Good work!"},
		{assess.GradeKeepPracticing, "Keep practicing!"},
	}
	for _, tt := range tests {
		if got := Grade(ctx, tt.grade); got != tt.want {
			t.Errorf("Grade(%s) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestMiddlewareNegotiates(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var got string
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Next")
	}))

	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{"default", "/", "", "Next"},
		{"header", "/", "es-ES,es;q=0.9", "Siguiente"},
		{"query wins", "/?lang=en", "es", "Next"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
