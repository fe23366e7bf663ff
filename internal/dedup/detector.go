package dedup

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/textnorm"
)

// Method tags the strategy that produced a duplicate group.
type Method string

const (
	MethodExact         Method = "exact"
	MethodOrthographic  Method = "orthographic"
	MethodNameInversion Method = "name-inversion"
	MethodTimeProximity Method = "time-proximity"
	MethodOverlap       Method = "overlap"
)

// Mode selects which strategies run.
type Mode string

const (
	ModeStandard Mode = "standard" // exact-key grouping only
	ModeAdvanced Mode = "advanced" // pairwise strategies only
	ModeBoth     Mode = "both"
)

// Group is one duplicate group found by a single strategy. Members are
// indices into the record slice passed to Detect. Groups from different
// strategies may overlap in membership; they are never merged together.
type Group struct {
	Method  Method
	Key     string
	Members []int
	Fields  []string // field(s) that triggered the match
	// WhitespaceOnly marks exact groups whose raw values differ only in
	// whitespace. That is a benign data-entry artifact rather than a true
	// duplicate, and operators handle it differently.
	WhitespaceOnly bool
}

// Options holds the tunable thresholds for the pairwise strategies. The
// defaults reproduce the historical behavior; none of them is load-bearing
// beyond "worked well on real calendars so far".
type Options struct {
	ProximityWindowMin int     // max start-time distance for time-proximity
	OverlapWindowMin   int     // max start-time distance for overlap
	FamilySimilarity   float64 // family-name floor for orthographic
	GivenSimilarity    float64 // given-name floor for orthographic
	NameSimilarity     float64 // fuzzy floor inside the name cross-match
	TitleSimilarity    float64 // course-title floor for pair confirmation
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		ProximityWindowMin: 90,
		OverlapWindowMin:   30,
		FamilySimilarity:   0.75,
		GivenSimilarity:    0.9,
		NameSimilarity:     0.8,
		TitleSimilarity:    0.6,
	}
}

// Detector partitions a record collection into duplicate groups using
// independently selectable strategies.
type Detector struct {
	opts    Options
	matcher textnorm.Matcher
}

func NewDetector(opts Options) *Detector {
	m := textnorm.NewMatcher()
	m.MinSimilarity = opts.NameSimilarity
	return &Detector{opts: opts, matcher: m}
}

// strategy pairs a method tag with its scan. The pairwise scans are O(n²);
// an indexed implementation can replace any entry without changing the
// Group contract.
type strategy struct {
	method Method
	run    func(d *Detector, records []calendar.LessonRecord) []Group
}

var standardStrategies = []strategy{
	{MethodExact, (*Detector).detectExact},
}

var advancedStrategies = []strategy{
	{MethodOrthographic, (*Detector).detectOrthographic},
	{MethodNameInversion, (*Detector).detectNameInversion},
	{MethodTimeProximity, (*Detector).detectTimeProximity},
	{MethodOverlap, (*Detector).detectOverlap},
}

// Detect runs the strategies selected by mode and returns the groups keyed
// by their group key.
func (d *Detector) Detect(records []calendar.LessonRecord, mode Mode) map[string]Group {
	var selected []strategy
	switch mode {
	case ModeStandard:
		selected = standardStrategies
	case ModeAdvanced:
		selected = advancedStrategies
	default:
		selected = append(append([]strategy{}, standardStrategies...), advancedStrategies...)
	}

	groups := make(map[string]Group)
	for _, s := range selected {
		for _, g := range s.run(d, records) {
			groups[g.Key] = g
		}
	}
	return groups
}

// Summary counts groups per method, for operator logging.
type Summary struct {
	Records  int
	Groups   int
	ByMethod map[Method]int
}

// Summarize runs Detect and tallies the result.
func (d *Detector) Summarize(records []calendar.LessonRecord, mode Mode) (map[string]Group, Summary) {
	groups := d.Detect(records, mode)
	sum := Summary{Records: len(records), Groups: len(groups), ByMethod: make(map[Method]int)}
	for _, g := range groups {
		sum.ByMethod[g.Method]++
	}
	return groups, sum
}

// FormatSummary returns a one-line human-readable summary.
func FormatSummary(s Summary) string {
	if s.Groups == 0 {
		return fmt.Sprintf("Scanned %d records, no duplicate groups found", s.Records)
	}
	methods := make([]string, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	parts := make([]string, 0, len(methods))
	for _, m := range methods {
		parts = append(parts, fmt.Sprintf("%d %s", s.ByMethod[Method(m)], m))
	}
	return fmt.Sprintf("Scanned %d records, found %d duplicate groups (%s)", s.Records, s.Groups, strings.Join(parts, ", "))
}

// --- exact-key grouping ---

func (d *Detector) detectExact(records []calendar.LessonRecord) []Group {
	byKey := make(map[string][]int)
	order := make([]string, 0)
	for i, r := range records {
		key := fmt.Sprintf("%s|%s|%s", r.Date, textnorm.Normalize(r.Teacher), textnorm.Normalize(r.TimeRange))
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], i)
	}

	var groups []Group
	for _, key := range order {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, Group{
			Method:         MethodExact,
			Key:            "exact|" + key,
			Members:        members,
			Fields:         []string{"date", "teacher", "time_range"},
			WhitespaceOnly: whitespaceOnlyGroup(records, members),
		})
	}
	return groups
}

// whitespaceOnlyGroup reports whether some pair in the group carries raw
// teacher or time values that literally differ only in whitespace.
func whitespaceOnlyGroup(records []calendar.LessonRecord, members []int) bool {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := records[members[i]], records[members[j]]
			if whitespaceOnlyDiff(a.Teacher, b.Teacher) || whitespaceOnlyDiff(a.TimeRange, b.TimeRange) {
				return true
			}
		}
	}
	return false
}

func whitespaceOnlyDiff(a, b string) bool {
	return a != b && textnorm.Normalize(a) == textnorm.Normalize(b)
}

// --- orthographic-error detection ---

func (d *Detector) detectOrthographic(records []calendar.LessonRecord) []Group {
	names, byName := distinctTeachers(records)

	var groups []Group
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			n1, n2 := names[i], names[j]
			given1, family1 := d.matcher.Splitter.Split(n1)
			given2, family2 := d.matcher.Splitter.Split(n2)
			if len(family1) == 0 || len(family2) == 0 {
				continue
			}
			if textnorm.Similarity(strings.ToLower(family1[0]), strings.ToLower(family2[0])) < d.opts.FamilySimilarity {
				continue
			}
			if !givenNamesCompatible(given1, given2, d.opts.GivenSimilarity) {
				continue
			}

			members := d.titleConfirmedPairs(records, byName[n1], byName[n2])
			if len(members) < 2 {
				continue
			}
			groups = append(groups, Group{
				Method:  MethodOrthographic,
				Key:     fmt.Sprintf("orthographic|%s|%s", n1, n2),
				Members: members,
				Fields:  []string{"teacher", "course_title"},
			})
		}
	}
	return groups
}

// givenNamesCompatible holds when both sides have a matching given name
// (exactly or nearly) or one side has no given-name candidate at all.
func givenNamesCompatible(given1, given2 []string, floor float64) bool {
	if len(given1) == 0 || len(given2) == 0 {
		return true
	}
	for _, g1 := range given1 {
		for _, g2 := range given2 {
			if strings.EqualFold(g1, g2) {
				return true
			}
			if textnorm.Similarity(strings.ToLower(g1), strings.ToLower(g2)) >= floor {
				return true
			}
		}
	}
	return false
}

// titleConfirmedPairs returns the union of record pairs, one per side, whose
// course titles are similar enough to confirm the name-level suspicion.
func (d *Detector) titleConfirmedPairs(records []calendar.LessonRecord, side1, side2 []int) []int {
	set := make(map[int]bool)
	for _, a := range side1 {
		for _, b := range side2 {
			if textnorm.Similarity(records[a].CourseTitle, records[b].CourseTitle) > d.opts.TitleSimilarity {
				set[a] = true
				set[b] = true
			}
		}
	}
	return sortedMembers(set)
}

// --- name-inversion detection ---

func (d *Detector) detectNameInversion(records []calendar.LessonRecord) []Group {
	names, byName := distinctTeachers(records)

	var groups []Group
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			n1, n2 := names[i], names[j]
			if n1 == n2 || !d.matcher.SamePerson(n1, n2) {
				continue
			}
			// Same day and same time slot, with matching titles: almost
			// certainly one lecture entered twice with the name flipped.
			byDate := make(map[string]map[int]bool)
			for _, a := range byName[n1] {
				for _, b := range byName[n2] {
					ra, rb := records[a], records[b]
					if ra.Date != rb.Date {
						continue
					}
					if textnorm.Normalize(ra.TimeRange) != textnorm.Normalize(rb.TimeRange) {
						continue
					}
					if textnorm.Similarity(ra.CourseTitle, rb.CourseTitle) <= d.opts.TitleSimilarity {
						continue
					}
					if byDate[ra.Date] == nil {
						byDate[ra.Date] = make(map[int]bool)
					}
					byDate[ra.Date][a] = true
					byDate[ra.Date][b] = true
				}
			}
			for date, set := range byDate {
				groups = append(groups, Group{
					Method:  MethodNameInversion,
					Key:     fmt.Sprintf("name-inversion|%s|%s|%s", date, n1, n2),
					Members: sortedMembers(set),
					Fields:  []string{"teacher", "date", "time_range"},
				})
			}
		}
	}
	return groups
}

// --- time-proximity detection ---

func (d *Detector) detectTimeProximity(records []calendar.LessonRecord) []Group {
	byKey := make(map[string][]int)
	for i, r := range records {
		key := r.Date + "|" + strings.ToLower(textnorm.Normalize(r.CourseTitle))
		byKey[key] = append(byKey[key], i)
	}
	return d.groupByStartDistance(records, byKey, MethodTimeProximity,
		d.opts.ProximityWindowMin, []string{"date", "course_title", "time_range"})
}

// --- schedule-overlap detection ---

func (d *Detector) detectOverlap(records []calendar.LessonRecord) []Group {
	byKey := make(map[string][]int)
	for i, r := range records {
		key := r.Date + "|" + textnorm.Normalize(r.Teacher)
		byKey[key] = append(byKey[key], i)
	}
	return d.groupByStartDistance(records, byKey, MethodOverlap,
		d.opts.OverlapWindowMin, []string{"date", "teacher", "time_range"})
}

// groupByStartDistance groups, within each candidate bucket, the records
// whose start times lie within window minutes of each other. Records with an
// unparsable time range are skipped here but stay available to the other
// strategies.
func (d *Detector) groupByStartDistance(records []calendar.LessonRecord, byKey map[string][]int, method Method, window int, fields []string) []Group {
	var groups []Group
	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}
		starts := make(map[int]int, len(members))
		for _, idx := range members {
			span, err := calendar.ParseTimeRange(records[idx].TimeRange)
			if err != nil {
				log.Printf("dedup: skipping record %d for %s: %v", idx, method, err)
				continue
			}
			starts[idx] = span.StartMin
		}
		set := make(map[int]bool)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, okA := starts[members[i]]
				b, okB := starts[members[j]]
				if !okA || !okB {
					continue
				}
				if absInt(a-b) <= window {
					set[members[i]] = true
					set[members[j]] = true
				}
			}
		}
		if len(set) < 2 {
			continue
		}
		groups = append(groups, Group{
			Method:  method,
			Key:     fmt.Sprintf("%s|%s", method, key),
			Members: sortedMembers(set),
			Fields:  fields,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// distinctTeachers returns the distinct non-empty teacher strings in first-seen
// order, plus the record indices carrying each.
func distinctTeachers(records []calendar.LessonRecord) ([]string, map[string][]int) {
	byName := make(map[string][]int)
	var names []string
	for i, r := range records {
		name := r.Teacher
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, seen := byName[name]; !seen {
			names = append(names, name)
		}
		byName[name] = append(byName[name], i)
	}
	return names, byName
}

func sortedMembers(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
