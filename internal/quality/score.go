package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/curriculum"
)

// Status classifies a class's delivered credits against its target.
type Status string

const (
	StatusOK      Status = "OK"
	StatusExcess  Status = "EXCESS"
	StatusDeficit Status = "DEFICIT"
)

// tolerance is the band around the target inside which a class counts as OK.
const tolerance = 0.1

// ClassRow is the per-class accounting line.
type ClassRow struct {
	Class     string
	Delivered float64
	Target    float64
	Delta     float64
	Status    Status
}

// Anomaly is one entry of the ranked remediation list.
type Anomaly struct {
	Class      string
	Delta      float64
	Status     Status
	Suggestion string
}

// Metrics is the overall data-quality verdict.
type Metrics struct {
	TotalClasses int
	OKCount      int
	ExcessCount  int
	DeficitCount int
	Completeness float64 // OK / total * 100
	Rating       string
	TopDeficit   []Anomaly
	TopExcess    []Anomaly
}

// Scorer computes a per-class completeness table and an overall data-quality
// percentage. The ranking is recomputed on every call; nothing is cached.
type Scorer struct {
	// TransversalTarget replaces the caller's target for classes recognized
	// as transversal, which carry a larger credit volume than the single
	// competition classes.
	TransversalTarget float64
	// RankSize bounds the deficit/excess remediation lists.
	RankSize int
}

// NewScorer returns a scorer with the standard transversal target and a
// top-5 ranking.
func NewScorer(transversalTarget float64) *Scorer {
	return &Scorer{TransversalTarget: transversalTarget, RankSize: 5}
}

// Score sums delivered credits per class against targetCredit and grades the
// calendar. Multi-class rows are expanded to one full-credit row per class
// before summing, the same policy the compliance auditor applies.
func (s *Scorer) Score(records []calendar.LessonRecord, targetCredit float64) ([]ClassRow, Metrics) {
	perClass := make(map[string]float64)
	for _, r := range calendar.ExpandAll(records) {
		class := r.ClassGroup
		if class == "" {
			continue
		}
		perClass[class] += r.CreditValue
	}

	classes := make([]string, 0, len(perClass))
	for class := range perClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	rows := make([]ClassRow, 0, len(classes))
	var metrics Metrics
	for _, class := range classes {
		target := targetCredit
		if curriculum.IsTransversalClass(class) {
			target = s.TransversalTarget
		}
		delivered := perClass[class]
		delta := delivered - target
		row := ClassRow{
			Class:     class,
			Delivered: delivered,
			Target:    target,
			Delta:     delta,
			Status:    statusFor(delta),
		}
		rows = append(rows, row)
		switch row.Status {
		case StatusOK:
			metrics.OKCount++
		case StatusExcess:
			metrics.ExcessCount++
		case StatusDeficit:
			metrics.DeficitCount++
		}
	}

	metrics.TotalClasses = len(rows)
	if metrics.TotalClasses > 0 {
		metrics.Completeness = float64(metrics.OKCount) / float64(metrics.TotalClasses) * 100
	}
	metrics.Rating = ratingFor(metrics.Completeness)
	metrics.TopDeficit = s.topAnomalies(rows, StatusDeficit)
	metrics.TopExcess = s.topAnomalies(rows, StatusExcess)
	return rows, metrics
}

func statusFor(delta float64) Status {
	switch {
	case delta > tolerance:
		return StatusExcess
	case delta < -tolerance:
		return StatusDeficit
	default:
		return StatusOK
	}
}

func ratingFor(completeness float64) string {
	switch {
	case completeness >= 90:
		return "excellent"
	case completeness >= 80:
		return "good"
	case completeness >= 70:
		return "mediocre"
	default:
		return "insufficient"
	}
}

// topAnomalies ranks the classes with the given status by |delta|, largest
// first, capped at RankSize, each with a suggested remediation.
func (s *Scorer) topAnomalies(rows []ClassRow, status Status) []Anomaly {
	var out []Anomaly
	for _, row := range rows {
		if row.Status != status {
			continue
		}
		out = append(out, Anomaly{
			Class:      row.Class,
			Delta:      row.Delta,
			Status:     status,
			Suggestion: suggestionFor(row),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i].Delta) > math.Abs(out[j].Delta)
	})
	if len(out) > s.RankSize {
		out = out[:s.RankSize]
	}
	return out
}

func suggestionFor(row ClassRow) string {
	if row.Status == StatusExcess {
		return fmt.Sprintf("class %s is %.1f CFU over target: check for hidden duplicate lessons", row.Class, row.Delta)
	}
	return fmt.Sprintf("class %s is %.1f CFU under target: check for missing lectures", row.Class, -row.Delta)
}
