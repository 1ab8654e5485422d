package assess

import "testing"

func TestNewSummary(t *testing.T) {
	tests := []struct {
		name  string
		score int
		total int
		want  Summary
	}{
		{"all correct", 5, 5, Summary{5, 5, 100, GradeExcellent}},
		{"three of five", 3, 5, Summary{3, 5, 60, GradeKeepPracticing}},
		{"ninety boundary", 9, 10, Summary{9, 10, 90, GradeExcellent}},
		{"seventy boundary", 7, 10, Summary{7, 10, 70, GradeGood}},
		{"two of three rounds up", 2, 3, Summary{2, 3, 67, GradeKeepPracticing}},
		{"eight of nine", 8, 9, Summary{8, 9, 89, GradeGood}},
		{"half rounds up", 1, 8, Summary{1, 8, 13, GradeKeepPracticing}},
		{"nothing", 0, 4, Summary{0, 4, 0, GradeKeepPracticing}},
		{"no questions", 0, 0, Summary{0, 0, 0, GradeKeepPracticing}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSummary(tt.score, tt.total); got != tt.want {
				t.Errorf("NewSummary(%d, %d) = %+v, want %+v", tt.score, tt.total, got, tt.want)
			}
		})
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		pct  int
		want Grade
	}{
		{100, GradeExcellent},
		{90, GradeExcellent},
		{89, GradeGood},
		{70, GradeGood},
		{69, GradeKeepPracticing},
		{0, GradeKeepPracticing},
	}
	for _, tt := range tests {
		if got := GradeFor(tt.pct); got != tt.want {
			t.Errorf("GradeFor(%d) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
