package merge

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/dedup"
)

// ErrEmptyGroup is returned when a merge is requested for a group with no
// members. That is a caller bug, not a data problem.
var ErrEmptyGroup = errors.New("merge: empty duplicate group")

// Result is one unified record plus the members it supersedes. The survivor
// keeps its place in the collection; the superseded rows are removed when the
// result is applied.
type Result struct {
	Unified    calendar.LessonRecord
	Survivor   int   // index of the surviving member
	Superseded []int // indices of the remaining members
}

// Field names accepted by Selective choices.
const (
	FieldDate        = "date"
	FieldTimeRange   = "time_range"
	FieldDepartment  = "department"
	FieldClassGroup  = "class_group"
	FieldCourseCode  = "course_code"
	FieldCourseTitle = "course_title"
	FieldTeacher     = "teacher"
	FieldRoom        = "room"
	FieldRemoteLink  = "remote_link"
	FieldCreditValue = "credit_value"
	FieldNote        = "note"
)

// Automatic merges a duplicate group by deterministic field-selection rules:
// identifier fields (date, time, teacher, title) take the first non-empty
// value; content fields take the longest meaningful value; the credit value
// takes the maximum. The group's first member is the survivor.
func Automatic(records []calendar.LessonRecord, group dedup.Group) (Result, error) {
	members, err := validMembers(records, group.Members)
	if err != nil {
		return Result{}, err
	}

	unified := records[members[0]]
	unified.Date = firstNonEmpty(records, members, func(r calendar.LessonRecord) string { return r.Date })
	unified.TimeRange = firstNonEmpty(records, members, func(r calendar.LessonRecord) string { return r.TimeRange })
	unified.Teacher = firstNonEmpty(records, members, func(r calendar.LessonRecord) string { return r.Teacher })
	unified.CourseTitle = firstNonEmpty(records, members, func(r calendar.LessonRecord) string { return r.CourseTitle })

	unified.Room = longestMeaningful(records, members, func(r calendar.LessonRecord) string { return r.Room })
	unified.RemoteLink = longestMeaningful(records, members, func(r calendar.LessonRecord) string { return r.RemoteLink })
	unified.Note = longestMeaningful(records, members, func(r calendar.LessonRecord) string { return r.Note })
	unified.Department = longestMeaningful(records, members, func(r calendar.LessonRecord) string { return r.Department })
	unified.ClassGroup = longestMeaningful(records, members, func(r calendar.LessonRecord) string { return r.ClassGroup })
	unified.CourseCode = longestMeaningful(records, members, func(r calendar.LessonRecord) string { return r.CourseCode })

	unified.CreditValue = maxCredit(records, members)
	unified.PathwayFlags = mergeFlags(records, members)

	return Result{
		Unified:    unified,
		Survivor:   members[0],
		Superseded: members[1:],
	}, nil
}

// Selective merges a group using caller-supplied per-field choices: each
// entry maps a field name to the member index whose value wins. Fields with
// no explicit choice fall back to the first non-empty value in group order.
// The choices come in as an explicit parameter, never as session state.
func Selective(records []calendar.LessonRecord, group dedup.Group, choices map[string]int) (calendar.LessonRecord, error) {
	members, err := validMembers(records, group.Members)
	if err != nil {
		return calendar.LessonRecord{}, err
	}
	for field, idx := range choices {
		if !memberOf(members, idx) {
			return calendar.LessonRecord{}, fmt.Errorf("merge: choice for %q names record %d outside the group", field, idx)
		}
	}

	pick := func(field string, fallback func(r calendar.LessonRecord) string) string {
		if idx, ok := choices[field]; ok {
			return fallback(records[idx])
		}
		return firstNonEmpty(records, members, fallback)
	}

	unified := records[members[0]]
	unified.Date = pick(FieldDate, func(r calendar.LessonRecord) string { return r.Date })
	unified.TimeRange = pick(FieldTimeRange, func(r calendar.LessonRecord) string { return r.TimeRange })
	unified.Department = pick(FieldDepartment, func(r calendar.LessonRecord) string { return r.Department })
	unified.ClassGroup = pick(FieldClassGroup, func(r calendar.LessonRecord) string { return r.ClassGroup })
	unified.CourseCode = pick(FieldCourseCode, func(r calendar.LessonRecord) string { return r.CourseCode })
	unified.CourseTitle = pick(FieldCourseTitle, func(r calendar.LessonRecord) string { return r.CourseTitle })
	unified.Teacher = pick(FieldTeacher, func(r calendar.LessonRecord) string { return r.Teacher })
	unified.Room = pick(FieldRoom, func(r calendar.LessonRecord) string { return r.Room })
	unified.RemoteLink = pick(FieldRemoteLink, func(r calendar.LessonRecord) string { return r.RemoteLink })
	unified.Note = pick(FieldNote, func(r calendar.LessonRecord) string { return r.Note })

	if idx, ok := choices[FieldCreditValue]; ok {
		unified.CreditValue = records[idx].CreditValue
	} else {
		unified.CreditValue = firstCredit(records, members)
	}
	unified.PathwayFlags = mergeFlags(records, members)

	return unified, nil
}

// Apply replaces the survivor's row with the unified record and removes the
// superseded rows, returning a fresh renumbered slice. The input is never
// mutated, so callers observe either the whole merge or nothing.
func Apply(records []calendar.LessonRecord, result Result) []calendar.LessonRecord {
	drop := make(map[int]bool, len(result.Superseded))
	for _, idx := range result.Superseded {
		drop[idx] = true
	}
	out := make([]calendar.LessonRecord, 0, len(records)-len(drop))
	for i, r := range records {
		if drop[i] {
			continue
		}
		if i == result.Survivor {
			r = result.Unified
		}
		out = append(out, r)
	}
	return out
}

func validMembers(records []calendar.LessonRecord, members []int) ([]int, error) {
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}
	for _, idx := range members {
		if idx < 0 || idx >= len(records) {
			return nil, fmt.Errorf("merge: member %d out of range (have %d records)", idx, len(records))
		}
	}
	return members, nil
}

func memberOf(members []int, idx int) bool {
	for _, m := range members {
		if m == idx {
			return true
		}
	}
	return false
}

func firstNonEmpty(records []calendar.LessonRecord, members []int, get func(r calendar.LessonRecord) string) string {
	for _, idx := range members {
		if v := get(records[idx]); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// longestMeaningful prefers the longest value after discarding blanks and the
// "nan"/"none" placeholders that leak out of spreadsheet exports. Ties go to
// the earliest member.
func longestMeaningful(records []calendar.LessonRecord, members []int, get func(r calendar.LessonRecord) string) string {
	best := ""
	for _, idx := range members {
		v := get(records[idx])
		if !meaningful(v) {
			continue
		}
		if len(v) > len(best) {
			best = v
		}
	}
	return best
}

func meaningful(v string) bool {
	t := strings.ToLower(strings.TrimSpace(v))
	return t != "" && t != "nan" && t != "none"
}

func maxCredit(records []calendar.LessonRecord, members []int) float64 {
	max := 0.0
	for _, idx := range members {
		if c := records[idx].CreditValue; c > max {
			max = c
		}
	}
	return max
}

func firstCredit(records []calendar.LessonRecord, members []int) float64 {
	for _, idx := range members {
		if c := records[idx].CreditValue; c > 0 {
			return c
		}
	}
	return 0
}

// mergeFlags takes, per pathway, the first non-empty attendance value in
// group order.
func mergeFlags(records []calendar.LessonRecord, members []int) map[calendar.Pathway]calendar.Attendance {
	merged := make(map[calendar.Pathway]calendar.Attendance)
	for _, p := range calendar.AllPathways {
		for _, idx := range members {
			if f := records[idx].Flag(p); f != calendar.AttendanceEmpty {
				merged[p] = f
				break
			}
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// SupersededIDs maps the superseded member indices to record IDs, for callers
// persisting the merge through a store.
func SupersededIDs(records []calendar.LessonRecord, result Result) []int64 {
	ids := make([]int64, 0, len(result.Superseded))
	for _, idx := range result.Superseded {
		ids = append(ids, records[idx].ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
