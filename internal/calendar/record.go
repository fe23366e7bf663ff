package calendar

import (
	"fmt"
	"strings"
)

// Pathway identifies one of the four teacher-training curricula tracked per lesson.
type Pathway string

const (
	PathwayPeF60      Pathway = "pef60"
	PathwayPeF30      Pathway = "pef30"
	PathwayPeF36      Pathway = "pef36"
	PathwayPeF30Art13 Pathway = "pef30_art13"
)

// AllPathways lists the pathways in their canonical reporting order.
var AllPathways = []Pathway{PathwayPeF60, PathwayPeF30, PathwayPeF36, PathwayPeF30Art13}

// Attendance is the delivery mode recorded for a lesson under one pathway.
type Attendance string

const (
	AttendanceInPerson      Attendance = "in_person"
	AttendanceRemote        Attendance = "remote"
	AttendanceNotApplicable Attendance = "not_applicable"
	AttendanceEmpty         Attendance = ""
)

// ValidAttendance reports whether v is one of the four accepted flag values.
func ValidAttendance(v Attendance) bool {
	switch v {
	case AttendanceInPerson, AttendanceRemote, AttendanceNotApplicable, AttendanceEmpty:
		return true
	}
	return false
}

// LessonRecord is one scheduled lecture occurrence. Fields hold the raw values
// as entered; reconciliation never mutates a record it was given.
type LessonRecord struct {
	ID           int64
	Date         string // "2006-01-02"
	TimeRange    string // "14:30-16:45", may cross midnight
	Department   string
	ClassGroup   string // competition-class code(s); hyphen-joined when shared
	PathwayFlags map[Pathway]Attendance
	CourseCode   string
	CourseTitle  string
	Teacher      string // "Given Family" by convention, not guaranteed
	Room         string
	RemoteLink   string
	CreditValue  float64 // CFU, >= 0
	Note         string
}

// Flag returns the attendance recorded for p, empty when no flag was entered.
func (r LessonRecord) Flag(p Pathway) Attendance {
	if r.PathwayFlags == nil {
		return AttendanceEmpty
	}
	return r.PathwayFlags[p]
}

// Delivered reports whether the lesson counts toward pathway p, i.e. it was
// held either in person or remotely for that pathway.
func (r LessonRecord) Delivered(p Pathway) bool {
	f := r.Flag(p)
	return f == AttendanceInPerson || f == AttendanceRemote
}

// ClassCodes splits a hyphen-joined class group into its individual codes.
// A plain single code comes back as a one-element slice; blanks are dropped.
func ClassCodes(classGroup string) []string {
	var codes []string
	for _, part := range strings.Split(classGroup, "-") {
		part = strings.TrimSpace(part)
		if part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}

// IsMultiClass reports whether the class group names more than one class.
func IsMultiClass(classGroup string) bool {
	return len(ClassCodes(classGroup)) > 1
}

// ExpandClasses expands a record whose class group joins several classes into
// one record per class. Each expanded row keeps the full credit value: a shared
// lecture earns its credits once per class, never split between them.
func ExpandClasses(r LessonRecord) []LessonRecord {
	codes := ClassCodes(r.ClassGroup)
	if len(codes) <= 1 {
		return []LessonRecord{r}
	}
	out := make([]LessonRecord, 0, len(codes))
	for _, code := range codes {
		row := r
		row.ClassGroup = code
		out = append(out, row)
	}
	return out
}

// ExpandAll applies ExpandClasses to every record in the collection.
func ExpandAll(records []LessonRecord) []LessonRecord {
	out := make([]LessonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ExpandClasses(r)...)
	}
	return out
}

// TimeSpan is a parsed time range in minutes since midnight. End may exceed
// 24*60 when the range crosses midnight.
type TimeSpan struct {
	StartMin int
	EndMin   int
}

// ParseTimeRange parses "HH:MM-HH:MM". Ranges ending at or before their start
// are taken to cross midnight.
func ParseTimeRange(s string) (TimeSpan, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return TimeSpan{}, fmt.Errorf("time range %q: want HH:MM-HH:MM", s)
	}
	start, err := parseClockMinutes(parts[0])
	if err != nil {
		return TimeSpan{}, fmt.Errorf("time range %q: %w", s, err)
	}
	end, err := parseClockMinutes(parts[1])
	if err != nil {
		return TimeSpan{}, fmt.Errorf("time range %q: %w", s, err)
	}
	if end <= start {
		end += 24 * 60
	}
	return TimeSpan{StartMin: start, EndMin: end}, nil
}

func parseClockMinutes(s string) (int, error) {
	var hour, min int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &min); err != nil {
		return 0, err
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, fmt.Errorf("clock out of range: %02d:%02d", hour, min)
	}
	return hour*60 + min, nil
}
