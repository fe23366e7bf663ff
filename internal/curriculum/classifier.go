package curriculum

import (
	"strings"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/textnorm"
)

// Area is a top-level curriculum bucket.
type Area string

const (
	AreaDisciplinary      Area = "Disciplinary"
	AreaTransversal       Area = "Transversal"
	AreaDirectPracticum   Area = "Direct Practicum"
	AreaIndirectPracticum Area = "Indirect Practicum"
	AreaNonClassified     Area = "Non-classified"
)

// AllAreas lists the formative areas in reporting order.
var AllAreas = []Area{AreaDisciplinary, AreaTransversal, AreaDirectPracticum, AreaIndirectPracticum}

// Subarea is a finer-grained bucket within the Transversal area.
type Subarea string

const (
	SubareaPedagogical   Subarea = "pedagogical"
	SubareaInclusion     Subarea = "inclusion"
	SubareaMethodology   Subarea = "methodology"
	SubareaPsychoSocial  Subarea = "psycho-socio-anthropological"
	SubareaLinguaDigital Subarea = "linguistic-digital"
	SubareaLegislation   Subarea = "school-legislation"
)

// AllSubareas lists the transversal subareas in reporting order.
var AllSubareas = []Subarea{
	SubareaPedagogical, SubareaInclusion, SubareaMethodology,
	SubareaPsychoSocial, SubareaLinguaDigital, SubareaLegislation,
}

// Channel is the A/B grouping deciding which Transversal variant applies.
type Channel string

const (
	ChannelA    Channel = "A"
	ChannelB    Channel = "B"
	ChannelNone Channel = ""
)

// The two transversal channels appear in the data as class-group values.
const (
	TransversalClassA = "Transversal A"
	TransversalClassB = "Transversal B"
)

// groupA lists the humanities-leaning competition classes, served by the
// Transversal A channel.
var groupA = []string{
	"A001", "A007", "A008", "A011", "A012", "A013",
	"A017", "A018", "A019", "A022", "A023",
	"AA24", "AB24", "AC24", "AL24",
}

// groupB lists the science-leaning competition classes, served by the
// Transversal B channel.
var groupB = []string{
	"A020", "A026", "A027", "A028", "A040", "A041",
	"A042", "A045", "A046", "A050", "A060", "B015",
}

// KeywordRule maps a lower-cased substring of the course title to a
// transversal subarea.
type KeywordRule struct {
	Keyword string  `yaml:"keyword"`
	Subarea Subarea `yaml:"subarea"`
}

// defaultKeywordTable is scanned in order against the lower-cased course
// title; the first containment match wins, so more specific phrases must stay
// ahead of generic ones.
var defaultKeywordTable = []KeywordRule{
	{"inclusion", SubareaInclusion},
	{"inclusiv", SubareaInclusion},
	{"special needs", SubareaInclusion},
	{"disabilit", SubareaInclusion},
	{"bisogni educativi", SubareaInclusion},
	{"pedagog", SubareaPedagogical},
	{"educazion", SubareaPedagogical},
	{"didattic", SubareaMethodology},
	{"metodolog", SubareaMethodology},
	{"teaching method", SubareaMethodology},
	{"valutazion", SubareaMethodology},
	{"psicolog", SubareaPsychoSocial},
	{"psycholog", SubareaPsychoSocial},
	{"sociolog", SubareaPsychoSocial},
	{"antropolog", SubareaPsychoSocial},
	{"anthropolog", SubareaPsychoSocial},
	{"linguistic", SubareaLinguaDigital},
	{"digital", SubareaLinguaDigital},
	{"lingua", SubareaLinguaDigital},
	{"legislazion", SubareaLegislation},
	{"legislation", SubareaLegislation},
	{"normativ", SubareaLegislation},
	{"ordinamento", SubareaLegislation},
}

// Classification is the curriculum placement of one lesson record.
type Classification struct {
	Area    Area
	Subarea Subarea // populated only when Area is Transversal
	Channel Channel
}

// Classifier maps lesson records to formative areas and transversal subareas.
// The zero value is not usable; construct with NewClassifier.
type Classifier struct {
	keywords []KeywordRule
	inGroupA map[string]bool
	inGroupB map[string]bool
}

// NewClassifier builds a classifier with the default reference tables.
func NewClassifier() *Classifier {
	return NewClassifierWithKeywords(defaultKeywordTable)
}

// NewClassifierWithKeywords builds a classifier with an operator-supplied
// keyword table. Table order is significant and preserved.
func NewClassifierWithKeywords(keywords []KeywordRule) *Classifier {
	c := &Classifier{
		keywords: keywords,
		inGroupA: make(map[string]bool, len(groupA)),
		inGroupB: make(map[string]bool, len(groupB)),
	}
	for _, code := range groupA {
		c.inGroupA[code] = true
	}
	for _, code := range groupB {
		c.inGroupB[code] = true
	}
	return c
}

// Classify places a record in a formative area, and for transversal lessons
// also in a subarea and channel. The decision is driven by the class-group
// value first and the course title second.
func (c *Classifier) Classify(r calendar.LessonRecord) Classification {
	cg := textnorm.Normalize(r.ClassGroup)
	// The title scan runs on every path; its result is attached only for
	// transversal lessons.
	subarea := c.subareaFromTitle(r.CourseTitle)

	switch {
	case strings.EqualFold(cg, TransversalClassA):
		return Classification{Area: AreaTransversal, Subarea: subarea, Channel: ChannelA}
	case strings.EqualFold(cg, TransversalClassB):
		return Classification{Area: AreaTransversal, Subarea: subarea, Channel: ChannelB}
	case c.inGroupA[cg]:
		return Classification{Area: AreaDisciplinary, Channel: ChannelA}
	case c.inGroupB[cg]:
		return Classification{Area: AreaDisciplinary, Channel: ChannelB}
	case cg == "":
		return Classification{Area: AreaNonClassified}
	default:
		return Classification{Area: AreaDisciplinary}
	}
}

// subareaFromTitle returns the subarea of the first keyword contained in the
// lower-cased title, or empty when nothing matches.
func (c *Classifier) subareaFromTitle(title string) Subarea {
	lower := strings.ToLower(title)
	for _, rule := range c.keywords {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Subarea
		}
	}
	return ""
}

// IsTransversalClass reports whether a class name denotes one of the
// transversal channels, by exact name or by containing the transversal
// keyword in either language.
func IsTransversalClass(class string) bool {
	n := textnorm.Normalize(class)
	if strings.EqualFold(n, TransversalClassA) || strings.EqualFold(n, TransversalClassB) {
		return true
	}
	lower := strings.ToLower(n)
	return strings.Contains(lower, "transversal") || strings.Contains(lower, "trasversale")
}
