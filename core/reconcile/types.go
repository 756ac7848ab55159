package reconcile

// ComparisonEntry represents one attribute comparison between two sections.
// Entries are produced by the Equivalence collaborator's formatter; the
// reconcilers construct one directly only for the table coverage check,
// whose "missing in table" records have no second value to format.
type ComparisonEntry struct {
	// DisplayKey is the human-readable attribute name (e.g. "Cpu Model").
	DisplayKey string `json:"display_key"`

	// LabelA identifies the first side's source key (e.g. "title_cpu_model_key").
	LabelA string `json:"label_a"`

	// ValueA is the first side's display value.
	ValueA string `json:"value_a"`

	// LabelB identifies the second side's source key.
	LabelB string `json:"label_b"`

	// ValueB is the second side's display value.
	ValueB string `json:"value_b"`

	// IsMatch is true when the two sides were judged equivalent.
	IsMatch bool `json:"is_match"`

	// MultipleEntries is true when the comparison spanned more than one
	// table entry.
	MultipleEntries bool `json:"multiple_entries"`
}

// KeyMapping declares that key1 in section1 should be compared against key2
// in section2 even though their bare names differ. Mappings are user
// configuration, loaded once per reconciliation pass and treated read-only.
type KeyMapping struct {
	Section1 string `yaml:"section1" json:"section1"`
	Key1     string `yaml:"key1" json:"key1"`
	Section2 string `yaml:"section2" json:"section2"`
	Key2     string `yaml:"key2" json:"key2"`
}

// ConsolidatedMismatch is a single reported discrepancy standing for one or
// more per-table-entry mismatches that share the same displayed values.
type ConsolidatedMismatch struct {
	// DisplayKey is the human-readable attribute name.
	DisplayKey string `json:"display_key"`

	// ValueA is the non-table side's display value.
	ValueA string `json:"value_a"`

	// ValueB is the table side's display value.
	ValueB string `json:"value_b"`

	// Entries annotates which table entries produced the mismatch:
	// "All Entries", "Entry 2", "Entries 1, 3" or "Collective Mismatch"
	// for mismatches computed over the aggregated value sets.
	Entries string `json:"entries"`
}

// Report is the outcome of one reconciler call.
type Report struct {
	// Entries holds every comparison performed, matches included, in a
	// deterministic order.
	Entries []ComparisonEntry `json:"entries"`

	// Issues is the subset of Entries that mismatched.
	Issues []ComparisonEntry `json:"issues"`

	// IssueStrings holds the rendered, de-duplicated issue descriptions.
	IssueStrings []string `json:"issue_strings"`

	// Consolidated holds per-table-entry mismatches collapsed by displayed
	// values. Only the table-involving reconcilers populate it.
	Consolidated []ConsolidatedMismatch `json:"consolidated,omitempty"`
}

// add records a comparison entry.
func (r *Report) add(entry ComparisonEntry) {
	r.Entries = append(r.Entries, entry)
}

// flag records a mismatched entry and its issue string. Issue strings are
// de-duplicated by exact equality within one reconciler call.
func (r *Report) flag(entry ComparisonEntry, issue string) {
	r.Issues = append(r.Issues, entry)
	r.addIssueString(issue)
}

func (r *Report) addIssueString(issue string) {
	if issue == "" {
		return
	}
	for _, existing := range r.IssueStrings {
		if existing == issue {
			return
		}
	}
	r.IssueStrings = append(r.IssueStrings, issue)
}
