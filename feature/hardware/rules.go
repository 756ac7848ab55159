package hardware

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"

	"listing-reconciler/core/reconcile"
	"listing-reconciler/core/units"
)

// Rules judges whether two extracted values mean the same thing for a given
// attribute. It implements reconcile.Equivalence.
type Rules struct {
	// synonyms maps an attribute key (or "*" for all attributes) to groups
	// of values that count as equal. Values are loose-normalized on load.
	synonyms map[string][][]string
}

var _ reconcile.Equivalence = (*Rules)(nil)

// rulesFile is the on-disk shape of an equivalence rules file.
type rulesFile struct {
	Synonyms map[string][][]string `yaml:"synonyms"`
}

// NewRules returns a rule set with no synonym groups; the built-in
// normalization and attribute predicates still apply.
func NewRules() *Rules {
	return &Rules{synonyms: map[string][][]string{}}
}

// LoadRules reads synonym groups from a YAML file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := NewRules()
	for key, groups := range file.Synonyms {
		normalized := make([][]string, 0, len(groups))
		for _, group := range groups {
			values := make([]string, 0, len(group))
			for _, v := range group {
				values = append(values, looseNormalize(v))
			}
			normalized = append(normalized, values)
		}
		rules.synonyms[strings.ToLower(strings.TrimSpace(key))] = normalized
	}
	return rules, nil
}

// IsEquivalent reports whether a and b are the same value for the attribute.
func (r *Rules) IsEquivalent(attributeKey, a, b string, vc reconcile.ValueContext) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return a == b
	}
	if strings.EqualFold(a, b) {
		return true
	}
	if units.NormalizeCapacityToken(a) == units.NormalizeCapacityToken(b) {
		return true
	}

	switch {
	case strings.Contains(attributeKey, "cpu_model"):
		return r.CPUModelsEquivalent(a, b, vc)
	case strings.Contains(attributeKey, "cpu_generation"):
		return generationsEquivalent(a, b)
	case strings.Contains(attributeKey, "screen_size"):
		return measurementsEquivalent(a, b)
	case strings.Contains(attributeKey, "cpu_speed"), strings.Contains(attributeKey, "clock_speed"):
		return measurementsEquivalent(a, b)
	}

	la, lb := looseNormalize(a), looseNormalize(b)
	if la == lb {
		return true
	}

	return r.synonymMatch(attributeKey, la, lb)
}

// synonymMatch checks the attribute-specific groups and the global "*"
// groups for a pair of loose-normalized values.
func (r *Rules) synonymMatch(attributeKey, la, lb string) bool {
	for _, scope := range []string{strings.ToLower(attributeKey), "*"} {
		for _, group := range r.synonyms[scope] {
			foundA, foundB := false, false
			for _, v := range group {
				if v == la {
					foundA = true
				}
				if v == lb {
					foundB = true
				}
			}
			if foundA && foundB {
				return true
			}
		}
	}
	return false
}

var looseRe = regexp.MustCompile(`[^a-z0-9]+`)

// looseNormalize lower-cases and strips everything but letters and digits, so
// "DDR4 SDRAM" and "ddr4-sdram" compare equal.
func looseNormalize(value string) string {
	return looseRe.ReplaceAllString(strings.ToLower(value), "")
}

var generationRe = regexp.MustCompile(`(\d+)\s*(?:th|st|nd|rd)?`)

// generationsEquivalent compares CPU generations by their ordinal: "7th Gen",
// "7th Gen Intel" and "7" all agree.
func generationsEquivalent(a, b string) bool {
	ma := generationRe.FindStringSubmatch(strings.ToLower(a))
	mb := generationRe.FindStringSubmatch(strings.ToLower(b))
	if ma == nil || mb == nil {
		return false
	}
	return ma[1] == mb[1]
}

var measurementRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// measurementsEquivalent compares the first numeric component of two values,
// ignoring unit spelling: `13.3"` equals "13.3 in", "2.80GHz" equals
// "2.8 GHz".
func measurementsEquivalent(a, b string) bool {
	ma := measurementRe.FindStringSubmatch(a)
	mb := measurementRe.FindStringSubmatch(b)
	if ma == nil || mb == nil {
		return false
	}
	return trimNumber(ma[1]) == trimNumber(mb[1])
}

// trimNumber drops trailing zeros after the decimal point so "2.80" and
// "2.8" agree.
func trimNumber(n string) string {
	if !strings.Contains(n, ".") {
		return n
	}
	n = strings.TrimRight(n, "0")
	return strings.TrimRight(n, ".")
}
