package listing

import "strings"

// LeafCategory extracts the leaf category from the raw CATEGORY section.
// The section carries lines of the form "[leaf_category_key]: Laptops & Netbooks";
// the value after the first ": " on the matching line is returned, or "" when
// no such line exists.
func LeafCategory(sections map[string][]string) string {
	for _, line := range sections["CATEGORY"] {
		if !strings.Contains(line, "[leaf_category_key]") {
			continue
		}
		if _, value, ok := strings.Cut(line, ": "); ok {
			return strings.TrimSpace(value)
		}
		return ""
	}
	return ""
}

// IsMobileCategory reports whether a leaf category denotes phones or tablets,
// which relax the CPU suffix comparison.
func IsMobileCategory(leafCategory string) bool {
	lc := strings.ToLower(leafCategory)
	return strings.Contains(lc, "phone") || strings.Contains(lc, "tablet")
}

// IsMemoryCategory reports whether a leaf category denotes standalone memory
// modules, which switch several title keys onto category-specific table and
// specifics names.
func IsMemoryCategory(leafCategory string) bool {
	lc := strings.ToLower(leafCategory)
	return strings.Contains(lc, "memory") || strings.Contains(lc, "ram")
}
