package curriculum

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nugh75/calendario-sub000/internal/calendar"
)

// Requirements holds the credit targets one pathway must satisfy: a target
// per formative area, plus finer targets for the transversal subareas. A zero
// target means the bucket is not required for that pathway.
type Requirements struct {
	Areas    map[Area]float64    `yaml:"areas"`
	Subareas map[Subarea]float64 `yaml:"subareas"`
}

// RequirementTable maps each pathway to its credit requirements.
type RequirementTable map[calendar.Pathway]Requirements

// DefaultRequirements returns the regulation targets for the four pathways.
// Values are CFU.
func DefaultRequirements() RequirementTable {
	return RequirementTable{
		calendar.PathwayPeF60: {
			Areas: map[Area]float64{
				AreaDisciplinary:      16,
				AreaTransversal:       24,
				AreaDirectPracticum:   15,
				AreaIndirectPracticum: 5,
			},
			Subareas: map[Subarea]float64{
				SubareaPedagogical:   6,
				SubareaInclusion:     3,
				SubareaMethodology:   6,
				SubareaPsychoSocial:  4,
				SubareaLinguaDigital: 3,
				SubareaLegislation:   2,
			},
		},
		calendar.PathwayPeF30: {
			Areas: map[Area]float64{
				AreaDisciplinary:      12,
				AreaTransversal:       9,
				AreaDirectPracticum:   6,
				AreaIndirectPracticum: 3,
			},
			Subareas: map[Subarea]float64{
				SubareaPedagogical:   3,
				SubareaInclusion:     0,
				SubareaMethodology:   3,
				SubareaPsychoSocial:  2,
				SubareaLinguaDigital: 1,
				SubareaLegislation:   0,
			},
		},
		calendar.PathwayPeF36: {
			Areas: map[Area]float64{
				AreaDisciplinary:      14,
				AreaTransversal:       16,
				AreaDirectPracticum:   4,
				AreaIndirectPracticum: 2,
			},
			Subareas: map[Subarea]float64{
				SubareaPedagogical:   4,
				SubareaInclusion:     3,
				SubareaMethodology:   4,
				SubareaPsychoSocial:  3,
				SubareaLinguaDigital: 1,
				SubareaLegislation:   1,
			},
		},
		calendar.PathwayPeF30Art13: {
			Areas: map[Area]float64{
				AreaDisciplinary:      10,
				AreaTransversal:       11,
				AreaDirectPracticum:   6,
				AreaIndirectPracticum: 3,
			},
			Subareas: map[Subarea]float64{
				SubareaPedagogical:   3,
				SubareaInclusion:     2,
				SubareaMethodology:   3,
				SubareaPsychoSocial:  2,
				SubareaLinguaDigital: 1,
				SubareaLegislation:   0,
			},
		},
	}
}

// referenceFile is the on-disk YAML shape for operator overrides of the
// curriculum reference data.
type referenceFile struct {
	Keywords     []KeywordRule                     `yaml:"keywords"`
	Requirements map[calendar.Pathway]Requirements `yaml:"requirements"`
}

// LoadReference reads operator-editable reference tables from a YAML file.
// Missing sections fall back to the built-in defaults.
func LoadReference(path string) ([]KeywordRule, RequirementTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read curriculum reference: %w", err)
	}
	var ref referenceFile
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, nil, fmt.Errorf("parse curriculum reference yaml: %w", err)
	}
	keywords := ref.Keywords
	if len(keywords) == 0 {
		keywords = defaultKeywordTable
	}
	table := RequirementTable(ref.Requirements)
	if len(table) == 0 {
		table = DefaultRequirements()
	}
	for p := range table {
		switch p {
		case calendar.PathwayPeF60, calendar.PathwayPeF30, calendar.PathwayPeF36, calendar.PathwayPeF30Art13:
		default:
			return nil, nil, fmt.Errorf("curriculum reference: unknown pathway %q", p)
		}
	}
	return keywords, table, nil
}
