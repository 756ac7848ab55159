package listing

// Snapshot holds the four independently extracted views of one marketplace
// listing, keyed by attribute. Keys may still carry their section wrappers
// (e.g. "title_cpu_model_key"); the reconcilers normalize them on entry.
type Snapshot struct {
	// Title holds attributes parsed from the free-text listing title.
	Title map[string]string `yaml:"title" json:"title"`

	// Specifics holds attributes from the structured specifics panel.
	Specifics map[string]string `yaml:"specifics" json:"specifics"`

	// Metadata holds listing-platform fields.
	Metadata map[string]string `yaml:"metadata" json:"metadata"`

	// TableShared holds spec-sheet values that apply to every table entry.
	TableShared map[string]string `yaml:"table_shared" json:"table_shared"`

	// TableEntries holds one attribute map per physical table row, in
	// listing order.
	TableEntries []map[string]string `yaml:"table_entries" json:"table_entries"`
}

// Clone returns a deep copy of the snapshot with fully disjoint backing
// storage. Reconcilers operate on clones only: a driver audits many listings
// in a tight loop, and in-place edits (such as an injected derived ram_size)
// must never leak into the caller's maps or the next listing's run.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Title:        cloneMap(s.Title),
		Specifics:    cloneMap(s.Specifics),
		Metadata:     cloneMap(s.Metadata),
		TableShared:  cloneMap(s.TableShared),
		TableEntries: cloneEntries(s.TableEntries),
	}
}

// cloneMap copies a section map. A nil input becomes an empty map so callers
// never need conditional existence checks.
func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneEntries(entries []map[string]string) []map[string]string {
	out := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloneMap(e))
	}
	return out
}
