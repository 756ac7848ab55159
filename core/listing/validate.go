package listing

import "fmt"

// Validate inspects a snapshot for structural problems and returns a list of
// warnings. A malformed listing must never abort batch processing, so nothing
// here is fatal: the audit proceeds and the warnings are logged alongside it.
func Validate(s Snapshot) []string {
	var warnings []string

	if len(s.Title) == 0 && len(s.Specifics) == 0 && len(s.TableShared) == 0 &&
		len(s.TableEntries) == 0 && len(s.Metadata) == 0 {
		warnings = append(warnings, "snapshot has no populated sections")
		return warnings
	}

	for idx, entry := range s.TableEntries {
		if len(entry) == 0 {
			warnings = append(warnings, fmt.Sprintf("table entry %d is empty", idx+1))
		}
	}

	sections := []struct {
		name    string
		section map[string]string
	}{
		{"title", s.Title},
		{"specifics", s.Specifics},
		{"metadata", s.Metadata},
		{"table_shared", s.TableShared},
	}
	for _, sec := range sections {
		for _, key := range SortedKeys(sec.section) {
			if NormalizeKey(key) == "" {
				warnings = append(warnings, fmt.Sprintf("section %s has a key that normalizes to empty: %q", sec.name, key))
			}
		}
	}

	return warnings
}
