package curriculum

import (
	"fmt"
	"sort"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/textnorm"
)

// ErrUnknownPathway is wrapped into the error returned when an audit is
// requested for a pathway missing from the requirement table.
var ErrUnknownPathway = fmt.Errorf("audit: pathway not in requirement table")

// AreaTotals is the delivered-vs-required accounting for one formative area
// or transversal subarea.
type AreaTotals struct {
	InPerson   float64
	Remote     float64
	Delivered  float64 // InPerson + Remote
	Required   float64
	Difference float64 // Delivered - Required
	Conforme   bool
}

// Report is the compliance verdict for one pathway.
type Report struct {
	Pathway  calendar.Pathway
	Areas    map[Area]AreaTotals
	Subareas map[Subarea]AreaTotals // transversal credits only
	Conforme bool
}

// Auditor aggregates delivered credits per area and subarea and compares
// them against the pathway requirement table.
type Auditor struct {
	classifier   *Classifier
	requirements RequirementTable
}

// NewAuditor builds an auditor over the default reference tables.
func NewAuditor() *Auditor {
	return &Auditor{classifier: NewClassifier(), requirements: DefaultRequirements()}
}

// NewAuditorWith builds an auditor over explicit reference tables.
func NewAuditorWith(classifier *Classifier, requirements RequirementTable) *Auditor {
	return &Auditor{classifier: classifier, requirements: requirements}
}

// Audit computes the compliance report for one pathway. Credits are summed
// on a record set de-duplicated on (date, time, teacher, title) and with
// multi-class rows expanded to one full-credit row per class; skipping either
// step double- or under-counts credits, which is exactly the defect the
// auditor exists to catch.
func (a *Auditor) Audit(records []calendar.LessonRecord, pathway calendar.Pathway) (Report, error) {
	req, ok := a.requirements[pathway]
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownPathway, pathway)
	}

	var delivered []calendar.LessonRecord
	for _, r := range records {
		if r.Delivered(pathway) {
			delivered = append(delivered, r)
		}
	}
	delivered = dedupForAccounting(delivered)
	delivered = calendar.ExpandAll(delivered)

	report := Report{
		Pathway:  pathway,
		Areas:    make(map[Area]AreaTotals),
		Subareas: make(map[Subarea]AreaTotals),
	}

	for _, r := range delivered {
		cls := a.classifier.Classify(r)
		inPerson := r.Flag(pathway) == calendar.AttendanceInPerson
		addCredits(report.Areas, cls.Area, r.CreditValue, inPerson)
		if cls.Area == AreaTransversal && cls.Subarea != "" {
			addSubCredits(report.Subareas, cls.Subarea, r.CreditValue, inPerson)
		}
	}

	report.Conforme = true
	for _, area := range AllAreas {
		t := report.Areas[area]
		t.Delivered = t.InPerson + t.Remote
		t.Required = req.Areas[area]
		t.Difference = t.Delivered - t.Required
		t.Conforme = t.Difference >= 0 || t.Required == 0
		if !t.Conforme {
			report.Conforme = false
		}
		report.Areas[area] = t
	}
	for _, sub := range AllSubareas {
		t := report.Subareas[sub]
		t.Delivered = t.InPerson + t.Remote
		t.Required = req.Subareas[sub]
		t.Difference = t.Delivered - t.Required
		// A zero-target subarea is always conformant, whatever was delivered.
		t.Conforme = t.Required == 0 || t.Difference >= 0
		if !t.Conforme {
			report.Conforme = false
		}
		report.Subareas[sub] = t
	}
	return report, nil
}

// AuditAll audits every pathway in the requirement table, in canonical
// order. Pathways that cannot be audited are reported as errors, not
// panics.
func (a *Auditor) AuditAll(records []calendar.LessonRecord) ([]Report, []error) {
	var reports []Report
	var errs []error
	for _, p := range calendar.AllPathways {
		rep, err := a.Audit(records, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, rep)
	}
	return reports, errs
}

// dedupForAccounting keeps the first record per normalized
// (date, time, teacher, title) key.
func dedupForAccounting(records []calendar.LessonRecord) []calendar.LessonRecord {
	seen := make(map[string]bool, len(records))
	var out []calendar.LessonRecord
	for _, r := range records {
		key := fmt.Sprintf("%s|%s|%s|%s",
			r.Date,
			textnorm.Normalize(r.TimeRange),
			textnorm.Normalize(r.Teacher),
			textnorm.Normalize(r.CourseTitle),
		)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func addCredits(totals map[Area]AreaTotals, area Area, credits float64, inPerson bool) {
	t := totals[area]
	if inPerson {
		t.InPerson += credits
	} else {
		t.Remote += credits
	}
	totals[area] = t
}

func addSubCredits(totals map[Subarea]AreaTotals, sub Subarea, credits float64, inPerson bool) {
	t := totals[sub]
	if inPerson {
		t.InPerson += credits
	} else {
		t.Remote += credits
	}
	totals[sub] = t
}

// FormatReport renders a compact log-friendly summary of a report.
func FormatReport(rep Report) string {
	verdict := "NOT conformant"
	if rep.Conforme {
		verdict = "conformant"
	}
	out := fmt.Sprintf("pathway %s: %s", rep.Pathway, verdict)
	areas := make([]string, 0, len(rep.Areas))
	for area := range rep.Areas {
		areas = append(areas, string(area))
	}
	sort.Strings(areas)
	for _, area := range areas {
		t := rep.Areas[Area(area)]
		out += fmt.Sprintf("; %s %.1f/%.1f (%+.1f)", area, t.Delivered, t.Required, t.Difference)
	}
	return out
}
