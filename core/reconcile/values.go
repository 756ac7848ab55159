package reconcile

import (
	"strings"

	"listing-reconciler/core/listing"
	"listing-reconciler/core/units"
)

// capacityKeys are the attributes where a declared range may subsume a set of
// discrete values. No other key gets range treatment.
var capacityKeys = map[string]struct{}{
	"storage_capacity": {},
	"ram_capacity":     {},
	"ram_size":         {},
}

func isCapacityKey(key string) bool {
	_, ok := capacityKeys[key]
	return ok
}

// ramConfigKeys are the table keys a ram_size total can be derived from when
// the size key itself is absent ("2x8GB" -> "16gb").
var ramConfigKeys = []string{"ram_config", "ram_modules"}

func addSplit(set map[string]struct{}, value string) {
	for _, item := range listing.SplitValues(value) {
		set[item] = struct{}{}
	}
}

// collectSectionValues gathers every value a normalized section holds for a
// base key, numbered variants included, splitting compound values. The result
// is sorted and de-duplicated; variants are never compared pairwise by index.
func collectSectionValues(section map[string]string, base string) []string {
	set := make(map[string]struct{})
	addSplit(set, section[base])
	for _, key := range listing.SortedKeys(section) {
		if listing.IsNumberedVariant(key, base) {
			addSplit(set, section[key])
		}
	}
	return listing.SortedSet(set)
}

// derivedRAMSize extracts a total ram_size from a module-configuration value
// in the shared table values or, failing that, the entries.
func derivedRAMSize(shared map[string]string, entries []map[string]string) (string, bool) {
	for _, key := range ramConfigKeys {
		if total, ok := units.ModuleConfigTotal(shared[key]); ok {
			return total, true
		}
	}
	for _, entry := range entries {
		for _, key := range ramConfigKeys {
			if total, ok := units.ModuleConfigTotal(entry[key]); ok {
				return total, true
			}
		}
	}
	return "", false
}

// collectTableValues gathers every table value for a base key across the
// shared values and all entries. Keys match when they equal, or are numbered
// variants of, the base key or any alias in extraKeys. When base is ram_size
// and a module configuration is present, the derived total joins the set.
func collectTableValues(shared map[string]string, entries []map[string]string, base string, extraKeys []string) []string {
	set := make(map[string]struct{})

	if base == "ram_size" {
		if total, ok := derivedRAMSize(shared, entries); ok {
			set[total] = struct{}{}
		}
	}

	targets := append([]string{base}, extraKeys...)
	matches := func(key string) bool {
		for _, t := range targets {
			if key == t || listing.IsNumberedVariant(key, t) {
				return true
			}
		}
		return false
	}

	for _, key := range listing.SortedKeys(shared) {
		if matches(key) {
			addSplit(set, shared[key])
		}
	}
	for _, entry := range entries {
		for _, key := range listing.SortedKeys(entry) {
			if matches(key) {
				addSplit(set, entry[key])
			}
		}
	}

	return listing.SortedSet(set)
}

// hasBaseKey reports whether the table holds the base key itself or any
// numbered variant of it, in the shared values or any entry.
func hasBaseKey(shared map[string]string, entries []map[string]string, base string) bool {
	for key := range shared {
		if key == base || listing.IsNumberedVariant(key, base) {
			return true
		}
	}
	for _, entry := range entries {
		for key := range entry {
			if key == base || listing.IsNumberedVariant(key, base) {
				return true
			}
		}
	}
	return false
}

// injectDerivedRAMSize writes a ram_size derived from a module configuration
// into the working shared values when the table holds no ram_size of its own,
// so the key takes part in common-key selection.
func injectDerivedRAMSize(shared map[string]string, entries []map[string]string) (string, bool) {
	if hasBaseKey(shared, entries, "ram_size") {
		return "", false
	}
	total, ok := derivedRAMSize(shared, entries)
	if !ok {
		return "", false
	}
	shared["ram_size"] = total
	return total, true
}

// combinedTable overlays every entry on top of the shared values, giving the
// equivalence rules one map with the whole table in view.
func combinedTable(shared map[string]string, entries []map[string]string) map[string]string {
	out := make(map[string]string, len(shared))
	for k, v := range shared {
		out[k] = v
	}
	for _, entry := range entries {
		for k, v := range entry {
			out[k] = v
		}
	}
	return out
}

// matchAgainst returns the members of values with no equivalent partner in
// candidates. An empty result means full coverage of the values side.
func matchAgainst(ctx *Context, key string, values, candidates []string, vc ValueContext) (unmatched []string) {
	for _, v := range values {
		found := false
		for _, c := range candidates {
			if ctx.Rules.IsEquivalent(key, v, c, vc) {
				found = true
				break
			}
		}
		if !found {
			unmatched = append(unmatched, v)
		}
	}
	return unmatched
}

func joinComma(values []string) string {
	return strings.Join(values, ", ")
}

func joinSlash(values []string) string {
	return strings.Join(values, "/")
}

func anyWildcard(values []string) bool {
	for _, v := range values {
		if isWildcard(v) {
			return true
		}
	}
	return false
}

func containsSeparator(value string) bool {
	return strings.ContainsAny(value, "/,")
}
