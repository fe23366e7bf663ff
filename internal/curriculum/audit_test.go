package curriculum

import (
	"errors"
	"testing"

	"github.com/nugh75/calendario-sub000/internal/calendar"
)

// disciplinaryLesson is delivered in person for pef60 toward class A001.
func disciplinaryLesson(date, timeRange, title string, credits float64) calendar.LessonRecord {
	return calendar.LessonRecord{
		Date:        date,
		TimeRange:   timeRange,
		Teacher:     "Mario Rossi",
		CourseTitle: title,
		ClassGroup:  "A001",
		CreditValue: credits,
		PathwayFlags: map[calendar.Pathway]calendar.Attendance{
			calendar.PathwayPeF60: calendar.AttendanceInPerson,
		},
	}
}

func auditorRequiring(area Area, target float64) *Auditor {
	table := RequirementTable{
		calendar.PathwayPeF60: {
			Areas:    map[Area]float64{area: target},
			Subareas: map[Subarea]float64{},
		},
	}
	return NewAuditorWith(NewClassifier(), table)
}

func TestAuditDeficit(t *testing.T) {
	a := auditorRequiring(AreaDisciplinary, 16)
	records := []calendar.LessonRecord{
		disciplinaryLesson("2025-04-28", "09:00-13:00", "Algebra", 4),
		disciplinaryLesson("2025-04-29", "09:00-13:00", "Geometria", 6),
	}
	rep, err := a.Audit(records, calendar.PathwayPeF60)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	got := rep.Areas[AreaDisciplinary]
	if got.Delivered != 10 {
		t.Errorf("delivered: got %v, want 10", got.Delivered)
	}
	if got.Difference != -6.0 {
		t.Errorf("difference: got %v, want -6.0", got.Difference)
	}
	if got.Conforme || rep.Conforme {
		t.Error("expected non-conformant report for a deficit")
	}
}

func TestAuditSurplusConforms(t *testing.T) {
	a := auditorRequiring(AreaDisciplinary, 16)
	records := []calendar.LessonRecord{
		disciplinaryLesson("2025-04-28", "09:00-13:00", "Algebra", 8),
		disciplinaryLesson("2025-04-29", "09:00-13:00", "Geometria", 8.2),
	}
	rep, err := a.Audit(records, calendar.PathwayPeF60)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	got := rep.Areas[AreaDisciplinary]
	if diff := got.Difference - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("difference: got %v, want 0.2", got.Difference)
	}
	if !got.Conforme || !rep.Conforme {
		t.Error("expected conformant report for a surplus")
	}
}

func TestAuditDeduplicatesBeforeSumming(t *testing.T) {
	a := auditorRequiring(AreaDisciplinary, 4)
	// The same lecture entered twice, once with sloppy spacing.
	r1 := disciplinaryLesson("2025-04-28", "09:00-13:00", "Algebra", 4)
	r2 := disciplinaryLesson("2025-04-28", "09:00-13:00", "Algebra", 4)
	r2.Teacher = " Mario  Rossi "
	rep, err := a.Audit([]calendar.LessonRecord{r1, r2}, calendar.PathwayPeF60)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if got := rep.Areas[AreaDisciplinary].Delivered; got != 4 {
		t.Errorf("duplicate must be counted once: got %v, want 4", got)
	}
}

func TestAuditExpandsMultiClassWithFullCredit(t *testing.T) {
	a := auditorRequiring(AreaDisciplinary, 0)
	r := disciplinaryLesson("2025-04-28", "09:00-13:00", "Algebra", 2)
	r.ClassGroup = "A001-A007"
	rep, err := a.Audit([]calendar.LessonRecord{r}, calendar.PathwayPeF60)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	// One shared lecture, two classes, the credit is earned once per class.
	if got := rep.Areas[AreaDisciplinary].Delivered; got != 4 {
		t.Errorf("expanded credits: got %v, want 4", got)
	}
}

func TestAuditFiltersByPathwayFlag(t *testing.T) {
	a := auditorRequiring(AreaDisciplinary, 0)
	inPerson := disciplinaryLesson("2025-04-28", "09:00-13:00", "Algebra", 4)
	remote := disciplinaryLesson("2025-04-29", "09:00-13:00", "Geometria", 3)
	remote.PathwayFlags[calendar.PathwayPeF60] = calendar.AttendanceRemote
	notApplicable := disciplinaryLesson("2025-04-30", "09:00-13:00", "Analisi", 5)
	notApplicable.PathwayFlags[calendar.PathwayPeF60] = calendar.AttendanceNotApplicable

	rep, err := a.Audit([]calendar.LessonRecord{inPerson, remote, notApplicable}, calendar.PathwayPeF60)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	got := rep.Areas[AreaDisciplinary]
	if got.InPerson != 4 || got.Remote != 3 || got.Delivered != 7 {
		t.Errorf("in-person/remote split wrong: %+v", got)
	}
}

func TestAuditTransversalSubareas(t *testing.T) {
	table := RequirementTable{
		calendar.PathwayPeF60: {
			Areas: map[Area]float64{AreaTransversal: 0},
			Subareas: map[Subarea]float64{
				SubareaPedagogical: 3,
				SubareaInclusion:   0,
			},
		},
	}
	a := NewAuditorWith(NewClassifier(), table)

	ped := disciplinaryLesson("2025-04-28", "09:00-11:00", "Pedagogia generale", 2)
	ped.ClassGroup = "Transversal A"
	incl := disciplinaryLesson("2025-04-29", "09:00-11:00", "Didattica inclusiva", 9)
	incl.ClassGroup = "Transversal A"

	rep, err := a.Audit([]calendar.LessonRecord{ped, incl}, calendar.PathwayPeF60)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	pedTotals := rep.Subareas[SubareaPedagogical]
	if pedTotals.Delivered != 2 || pedTotals.Difference != -1 || pedTotals.Conforme {
		t.Errorf("pedagogical subarea: %+v", pedTotals)
	}
	// Zero-target subarea is conformant no matter what was delivered.
	inclTotals := rep.Subareas[SubareaInclusion]
	if !inclTotals.Conforme {
		t.Errorf("zero-target subarea must conform: %+v", inclTotals)
	}
	if rep.Conforme {
		t.Error("pedagogical deficit must fail the whole report")
	}
}

func TestAuditUnknownPathway(t *testing.T) {
	a := auditorRequiring(AreaDisciplinary, 16)
	_, err := a.Audit(nil, calendar.PathwayPeF36)
	if !errors.Is(err, ErrUnknownPathway) {
		t.Fatalf("expected ErrUnknownPathway, got %v", err)
	}
}

func TestAuditAllCollectsErrors(t *testing.T) {
	a := auditorRequiring(AreaDisciplinary, 16)
	reports, errs := a.AuditAll(nil)
	if len(reports) != 1 {
		t.Errorf("expected 1 report for the configured pathway, got %d", len(reports))
	}
	if len(errs) != 3 {
		t.Errorf("expected 3 unknown-pathway errors, got %d", len(errs))
	}
}

func TestDefaultRequirementsCoverAllPathways(t *testing.T) {
	table := DefaultRequirements()
	for _, p := range calendar.AllPathways {
		req, ok := table[p]
		if !ok {
			t.Errorf("missing requirements for %s", p)
			continue
		}
		for _, area := range AllAreas {
			if _, ok := req.Areas[area]; !ok {
				t.Errorf("pathway %s missing area target %s", p, area)
			}
		}
	}
}
