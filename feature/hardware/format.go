package hardware

import (
	"fmt"

	"listing-reconciler/core/reconcile"
)

// FormatComparison renders one comparison into an entry and, for mismatches,
// a human-readable issue string.
func (r *Rules) FormatComparison(displayKey, labelA, valueA, labelB, valueB string, isMatch, multipleEntries bool) (reconcile.ComparisonEntry, string) {
	entry := reconcile.ComparisonEntry{
		DisplayKey:      displayKey,
		LabelA:          labelA,
		ValueA:          valueA,
		LabelB:          labelB,
		ValueB:          valueB,
		IsMatch:         isMatch,
		MultipleEntries: multipleEntries,
	}

	if isMatch {
		return entry, ""
	}
	issue := fmt.Sprintf("%s: '%s' does not match '%s'", displayKey, valueA, valueB)
	return entry, issue
}
