package curriculum

import (
	"testing"

	"github.com/nugh75/calendario-sub000/internal/calendar"
)

func TestClassifyTransversalChannels(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify(calendar.LessonRecord{ClassGroup: "Transversal A", CourseTitle: "Pedagogia generale"})
	if cls.Area != AreaTransversal || cls.Channel != ChannelA {
		t.Errorf("Transversal A: got %+v", cls)
	}
	if cls.Subarea != SubareaPedagogical {
		t.Errorf("expected pedagogical subarea from title, got %q", cls.Subarea)
	}

	cls = c.Classify(calendar.LessonRecord{ClassGroup: "Transversal B", CourseTitle: "Metodologie didattiche"})
	if cls.Area != AreaTransversal || cls.Channel != ChannelB {
		t.Errorf("Transversal B: got %+v", cls)
	}
	if cls.Subarea != SubareaMethodology {
		t.Errorf("expected methodology subarea, got %q", cls.Subarea)
	}
}

func TestClassifyDisciplinaryGroups(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify(calendar.LessonRecord{ClassGroup: "A001", CourseTitle: "Storia dell'arte"})
	if cls.Area != AreaDisciplinary || cls.Channel != ChannelA {
		t.Errorf("A001: got %+v", cls)
	}
	if cls.Subarea != "" {
		t.Errorf("subarea must stay empty outside the transversal area, got %q", cls.Subarea)
	}

	cls = c.Classify(calendar.LessonRecord{ClassGroup: "A041", CourseTitle: "Informatica"})
	if cls.Area != AreaDisciplinary || cls.Channel != ChannelB {
		t.Errorf("A041: got %+v", cls)
	}
}

func TestClassifyUnknownAndEmpty(t *testing.T) {
	c := NewClassifier()

	cls := c.Classify(calendar.LessonRecord{ClassGroup: "Z999"})
	if cls.Area != AreaDisciplinary || cls.Channel != ChannelNone {
		t.Errorf("unknown class: got %+v", cls)
	}

	cls = c.Classify(calendar.LessonRecord{ClassGroup: "  "})
	if cls.Area != AreaNonClassified {
		t.Errorf("empty class group: got %+v", cls)
	}
}

func TestKeywordTableOrderSignificant(t *testing.T) {
	// "didattica inclusiva" contains both an inclusion and a methodology
	// keyword; the inclusion rules come first in the table and must win.
	c := NewClassifier()
	cls := c.Classify(calendar.LessonRecord{ClassGroup: "Transversal A", CourseTitle: "Didattica inclusiva"})
	if cls.Subarea != SubareaInclusion {
		t.Errorf("first matching keyword must win, got %q", cls.Subarea)
	}
}

func TestClassifyCustomKeywords(t *testing.T) {
	c := NewClassifierWithKeywords([]KeywordRule{{Keyword: "algebra", Subarea: SubareaLinguaDigital}})
	cls := c.Classify(calendar.LessonRecord{ClassGroup: "Transversal B", CourseTitle: "Algebra astratta"})
	if cls.Subarea != SubareaLinguaDigital {
		t.Errorf("custom keyword table ignored, got %q", cls.Subarea)
	}
}

func TestIsTransversalClass(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Transversal A", true},
		{"transversal b", true},
		{"Gruppo trasversale 1", true},
		{"A001", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsTransversalClass(c.in); got != c.want {
			t.Errorf("IsTransversalClass(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
