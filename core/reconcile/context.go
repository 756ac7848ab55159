package reconcile

import (
	"strings"

	"go.uber.org/zap"
)

// ValueContext carries the surrounding sections an equivalence rule may need
// to consult when judging two values (e.g. the video card field when deciding
// whether a bare GPU suffix is significant).
type ValueContext struct {
	// Title is the normalized title section.
	Title map[string]string

	// Specifics is the normalized specifics section.
	Specifics map[string]string

	// Table is the combined table data (shared values overlaid with every
	// entry's values).
	Table map[string]string

	// IsMobileDevice marks phone/tablet listings, which relax some rules.
	IsMobileDevice bool
}

// Equivalence is the injected collaborator that decides whether two extracted
// values mean the same thing and renders comparison records. The reconcilers
// own the tie-break policy (ranges, cardinality, aggregation); Equivalence
// owns the per-value judgment and presentation.
type Equivalence interface {
	// IsEquivalent reports whether a and b are the same value for the given
	// normalized attribute key.
	IsEquivalent(attributeKey, a, b string, vc ValueContext) bool

	// CPUModelsEquivalent is the specialized predicate for CPU model
	// strings, used by the multi-value and table reconcilers in place of
	// the generic rule.
	CPUModelsEquivalent(a, b string, vc ValueContext) bool

	// FormatComparison renders one comparison into an entry and, when it is
	// a mismatch, a human-readable issue string.
	FormatComparison(displayKey, labelA, valueA, labelB, valueB string, isMatch, multipleEntries bool) (ComparisonEntry, string)
}

// Context bundles the logger, the equivalence collaborator and the loaded
// key mappings for one reconciliation pass. It is passed explicitly to every
// reconciler; there is no ambient process-wide state.
type Context struct {
	// Logger receives diagnostic output. Nil disables logging.
	Logger *zap.Logger

	// Rules is the equivalence collaborator. It must be non-nil.
	Rules Equivalence

	// Mappings holds the user-defined key mappings for this pass.
	Mappings []KeyMapping
}

// log returns a usable logger even when none was injected.
func (c *Context) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// wildcardValue always satisfies equivalence: listings use it to defer an
// attribute to the free-text notes.
const wildcardValue = "see notes"

func isWildcard(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), wildcardValue)
}
