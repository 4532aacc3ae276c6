package Analytics

import (
	"fmt"
	"os"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Cohort selects which plot acreage a rule scales with
type Cohort string

const (
	CohortMature    Cohort = "mature"
	CohortGestation Cohort = "gestation"
	CohortAll       Cohort = "all"
)

// ForecastInput is what every rule sees
type ForecastInput struct {
	GestationArea float64
	MatureArea    float64
	RainImminent  bool
	Weather       WeatherSnapshot
}

func (in ForecastInput) area(c Cohort) float64 {
	switch c {
	case CohortGestation:
		return in.GestationArea
	case CohortAll:
		return in.GestationArea + in.MatureArea
	default:
		return in.MatureArea
	}
}

// ForecastRule turns plot and weather signals into demand for one kind of product
type ForecastRule struct {
	Name       string
	Unit       string
	Match      func(Product) bool
	Quantity   func(ForecastInput) float64
	Confidence func(ForecastInput) float64
	Reasoning  func(in ForecastInput, quantity float64) string
}

// RuleSpec is the declarative form of a keyword rule, as stored in rule files
type RuleSpec struct {
	Name           string   `json:"name"`
	Keywords       []string `json:"keywords"`
	Cohort         Cohort   `json:"cohort"`
	PerArea        float64  `json:"perArea"`
	Unit           string   `json:"unit"`
	BaseConfidence float64  `json:"baseConfidence"`
	RainSurge      float64  `json:"rainSurge"`
	RainConfidence float64  `json:"rainConfidence"`
}

// DefaultRuleSpecs are the built-in demand heuristics
func DefaultRuleSpecs() []RuleSpec {
	return []RuleSpec{
		{
			Name:           "nitrogen",
			Keywords:       []string{"urea", "nitrogen"},
			Cohort:         CohortMature,
			PerArea:        2.5,
			Unit:           "bags",
			BaseConfidence: 0.7,
			RainSurge:      1.2,
			RainConfidence: 0.9,
		},
		{
			Name:           "harvesting-tool",
			Keywords:       []string{"sickle", "chisel", "harvest"},
			Cohort:         CohortMature,
			PerArea:        0.5,
			Unit:           "units",
			BaseConfidence: 0.6,
		},
		{
			Name:           "micronutrient",
			Keywords:       []string{"boron", "zinc", "micronutrient"},
			Cohort:         CohortGestation,
			PerArea:        1.0,
			Unit:           "kg",
			BaseConfidence: 0.65,
			RainSurge:      1.1,
			RainConfidence: 0.75,
		},
	}
}

// Validate checks a spec before it is compiled into a rule
func (s RuleSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	if len(s.Keywords) == 0 {
		return fmt.Errorf("rule %q has no keywords", s.Name)
	}
	switch s.Cohort {
	case "", CohortMature, CohortGestation, CohortAll:
	default:
		return fmt.Errorf("rule %q has unknown cohort %q", s.Name, s.Cohort)
	}
	if s.PerArea < 0 || s.RainSurge < 0 {
		return fmt.Errorf("rule %q has a negative coefficient", s.Name)
	}
	if s.BaseConfidence < 0 || s.BaseConfidence > 1 || s.RainConfidence < 0 || s.RainConfidence > 1 {
		return fmt.Errorf("rule %q confidence must be within [0,1]", s.Name)
	}
	return nil
}

// Rule compiles the spec. A surge of 0 or 1 means rain has no effect.
func (s RuleSpec) Rule() ForecastRule {
	keywords := make([]string, 0, len(s.Keywords))
	for _, k := range s.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	surges := s.RainSurge > 1

	return ForecastRule{
		Name: s.Name,
		Unit: s.Unit,
		Match: func(p Product) bool {
			name := strings.ToLower(p.Name)
			for _, k := range keywords {
				if strings.Contains(name, k) {
					return true
				}
			}
			return false
		},
		Quantity: func(in ForecastInput) float64 {
			qty := in.area(s.Cohort) * s.PerArea
			if surges && in.RainImminent {
				qty *= s.RainSurge
			}
			return qty
		},
		Confidence: func(in ForecastInput) float64 {
			if surges && in.RainImminent && s.RainConfidence > s.BaseConfidence {
				return s.RainConfidence
			}
			return s.BaseConfidence
		},
		Reasoning: func(in ForecastInput, qty float64) string {
			cohort := s.Cohort
			if cohort == "" {
				cohort = CohortMature
			}
			reason := fmt.Sprintf("%.1f area units in %s plots need about %.1f %s at %.2f per unit area",
				in.area(s.Cohort), cohort, qty, s.Unit, s.PerArea)
			if surges && in.RainImminent {
				reason += fmt.Sprintf("; rain expected, demand raised by %.0f%%", (s.RainSurge-1)*100)
			}
			return reason
		},
	}
}

// CompileRules validates and compiles a list of specs
func CompileRules(specs []RuleSpec) ([]ForecastRule, error) {
	rules := make([]ForecastRule, 0, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		rules = append(rules, spec.Rule())
	}
	return rules, nil
}

// ParseRuleSpecs reads a JSON5 rule table
func ParseRuleSpecs(data []byte) ([]RuleSpec, error) {
	var specs []RuleSpec
	if err := json5.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing forecast rules: %w", err)
	}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// LoadRuleSpecs reads a JSON5 rule table from disk
func LoadRuleSpecs(path string) ([]RuleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forecast rules: %w", err)
	}
	return ParseRuleSpecs(data)
}
