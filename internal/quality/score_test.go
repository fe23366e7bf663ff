package quality

import (
	"strings"
	"testing"

	"github.com/nugh75/calendario-sub000/internal/calendar"
)

func classLesson(class string, credits float64) calendar.LessonRecord {
	return calendar.LessonRecord{
		Date:        "2025-04-28",
		TimeRange:   "09:00-11:00",
		ClassGroup:  class,
		CreditValue: credits,
	}
}

func TestStatusBoundaries(t *testing.T) {
	cases := []struct {
		delta float64
		want  Status
	}{
		{0.0, StatusOK},
		{0.1, StatusOK},
		{-0.1, StatusOK},
		{0.11, StatusExcess},
		{-0.11, StatusDeficit},
		{2.0, StatusExcess},
		{-2.0, StatusDeficit},
	}
	for _, c := range cases {
		if got := statusFor(c.delta); got != c.want {
			t.Errorf("statusFor(%v) = %s, want %s", c.delta, got, c.want)
		}
	}
}

func TestScorePerClassTotals(t *testing.T) {
	s := NewScorer(36)
	records := []calendar.LessonRecord{
		classLesson("A001", 6),
		classLesson("A001", 6),
		classLesson("A041", 10),
	}
	rows, metrics := s.Score(records, 12)
	if len(rows) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(rows))
	}
	if rows[0].Class != "A001" || rows[0].Delivered != 12 || rows[0].Status != StatusOK {
		t.Errorf("A001 row: %+v", rows[0])
	}
	if rows[1].Class != "A041" || rows[1].Delivered != 10 || rows[1].Status != StatusDeficit {
		t.Errorf("A041 row: %+v", rows[1])
	}
	if metrics.TotalClasses != 2 || metrics.OKCount != 1 || metrics.DeficitCount != 1 {
		t.Errorf("metrics: %+v", metrics)
	}
	if metrics.Completeness != 50 {
		t.Errorf("completeness: got %v, want 50", metrics.Completeness)
	}
	if metrics.Rating != "insufficient" {
		t.Errorf("rating: got %q", metrics.Rating)
	}
}

func TestScoreExpandsMultiClassRows(t *testing.T) {
	s := NewScorer(36)
	records := []calendar.LessonRecord{
		{ClassGroup: "A001-A007", CreditValue: 2.0},
	}
	rows, _ := s.Score(records, 2)
	if len(rows) != 2 {
		t.Fatalf("expected the shared lecture to count for both classes, got %d rows", len(rows))
	}
	for _, row := range rows {
		if row.Delivered != 2.0 {
			t.Errorf("class %s: delivered %v, want the full 2.0", row.Class, row.Delivered)
		}
		if row.Status != StatusOK {
			t.Errorf("class %s: status %s, want OK", row.Class, row.Status)
		}
	}
}

func TestScoreTransversalTarget(t *testing.T) {
	s := NewScorer(36)
	records := []calendar.LessonRecord{
		classLesson("Transversal A", 36),
		classLesson("A001", 36),
	}
	rows, _ := s.Score(records, 12)
	for _, row := range rows {
		switch row.Class {
		case "Transversal A":
			if row.Target != 36 || row.Status != StatusOK {
				t.Errorf("transversal class: %+v", row)
			}
		case "A001":
			if row.Target != 12 || row.Status != StatusExcess {
				t.Errorf("regular class: %+v", row)
			}
		}
	}
}

func TestScoreRatingTiers(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{95, "excellent"}, {90, "excellent"},
		{85, "good"}, {80, "good"},
		{75, "mediocre"}, {70, "mediocre"},
		{69.9, "insufficient"}, {0, "insufficient"},
	}
	for _, c := range cases {
		if got := ratingFor(c.pct); got != c.want {
			t.Errorf("ratingFor(%v) = %q, want %q", c.pct, got, c.want)
		}
	}
}

func TestScoreRankedAnomalies(t *testing.T) {
	s := NewScorer(36)
	records := []calendar.LessonRecord{
		classLesson("A001", 2),  // -10
		classLesson("A007", 6),  // -6
		classLesson("A041", 20), // +8
		classLesson("A042", 13), // +1
	}
	_, metrics := s.Score(records, 12)

	if len(metrics.TopDeficit) != 2 {
		t.Fatalf("expected 2 deficit anomalies, got %d", len(metrics.TopDeficit))
	}
	if metrics.TopDeficit[0].Class != "A001" {
		t.Errorf("worst deficit must rank first, got %s", metrics.TopDeficit[0].Class)
	}
	if !strings.Contains(metrics.TopDeficit[0].Suggestion, "missing lectures") {
		t.Errorf("deficit suggestion: %q", metrics.TopDeficit[0].Suggestion)
	}

	if len(metrics.TopExcess) != 2 {
		t.Fatalf("expected 2 excess anomalies, got %d", len(metrics.TopExcess))
	}
	if metrics.TopExcess[0].Class != "A041" {
		t.Errorf("worst excess must rank first, got %s", metrics.TopExcess[0].Class)
	}
	if !strings.Contains(metrics.TopExcess[0].Suggestion, "hidden duplicate") {
		t.Errorf("excess suggestion: %q", metrics.TopExcess[0].Suggestion)
	}
}

func TestScoreRankSizeCap(t *testing.T) {
	s := NewScorer(36)
	var records []calendar.LessonRecord
	for _, class := range []string{"A001", "A007", "A008", "A011", "A012", "A013", "A017"} {
		records = append(records, classLesson(class, 1))
	}
	_, metrics := s.Score(records, 12)
	if len(metrics.TopDeficit) != 5 {
		t.Errorf("deficit list must cap at 5, got %d", len(metrics.TopDeficit))
	}
}
