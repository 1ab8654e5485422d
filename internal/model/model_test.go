package model

import "testing"

func TestParseDisplayMode(t *testing.T) {
	tests := []struct {
		in   string
		want DisplayMode
	}{
		{"present", ModePresent},
		{"normal", ModeNormal},
		{"", ModeNormal},
		{"PRESENT", ModeNormal},
	}
	for _, tt := range tests {
		if got := ParseDisplayMode(tt.in); got != tt.want {
			t.Errorf("ParseDisplayMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSetName(t *testing.T) {
	for _, name := range []string{"do_now", "understanding_check", "walkthrough"} {
		if got, ok := ParseSetName(name); !ok || string(got) != name {
			t.Errorf("ParseSetName(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := ParseSetName("final_exam"); ok {
		t.Error("expected unknown set to be rejected")
	}
	if !SetDoNow.Batch() || SetUnderstandingCheck.Batch() || SetWalkthrough.Batch() {
		t.Error("expected only do_now to be answered as a batch")
	}
}

func TestThemeHex(t *testing.T) {
	if got := (Theme{Color: "purple"}).Hex(); got != "#9333ea" {
		t.Errorf("expected #9333ea, got %s", got)
	}
	if got := (Theme{Color: "chartreuse"}).Hex(); got != "#475569" {
		t.Errorf("expected slate fallback, got %s", got)
	}
}

func TestLessonSetRequiresQuestions(t *testing.T) {
	l := Lesson{Sets: map[SetName]QuestionSet{SetDoNow: {Name: SetDoNow}}}
	if _, ok := l.Set(SetDoNow); ok {
		t.Error("expected an empty set to be reported missing")
	}
}

func TestThemeColors(t *testing.T) {
	colors := ThemeColors()
	if len(colors) != 9 {
		t.Fatalf("expected 9 theme colors, got %d", len(colors))
	}
	if colors[0] != "amber" || colors[len(colors)-1] != "teal" {
		t.Errorf("expected sorted colors from amber to teal, got %v", colors)
	}
}
