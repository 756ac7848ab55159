package reconcile

import (
	"fmt"
	"strings"

	"listing-reconciler/core/units"
)

// stubRules is a deterministic Equivalence for tests: values match when their
// normalized capacity tokens are equal, CPU models match on substring
// containment.
type stubRules struct{}

func (stubRules) IsEquivalent(attributeKey, a, b string, vc ValueContext) bool {
	return units.NormalizeCapacityToken(a) == units.NormalizeCapacityToken(b)
}

func (stubRules) CPUModelsEquivalent(a, b string, vc ValueContext) bool {
	al, bl := strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if al == "" || bl == "" {
		return false
	}
	return strings.Contains(al, bl) || strings.Contains(bl, al)
}

func (stubRules) FormatComparison(displayKey, labelA, valueA, labelB, valueB string, isMatch, multipleEntries bool) (ComparisonEntry, string) {
	entry := ComparisonEntry{
		DisplayKey:      displayKey,
		LabelA:          labelA,
		ValueA:          valueA,
		LabelB:          labelB,
		ValueB:          valueB,
		IsMatch:         isMatch,
		MultipleEntries: multipleEntries,
	}
	issue := fmt.Sprintf("%s: '%s' does not match '%s'", displayKey, valueA, valueB)
	return entry, issue
}

func newTestContext(mappings ...KeyMapping) *Context {
	return &Context{Rules: stubRules{}, Mappings: mappings}
}

// findEntry returns the first comparison entry with the given display key.
func findEntry(entries []ComparisonEntry, displayKey string) (ComparisonEntry, bool) {
	for _, e := range entries {
		if e.DisplayKey == displayKey {
			return e, true
		}
	}
	return ComparisonEntry{}, false
}
