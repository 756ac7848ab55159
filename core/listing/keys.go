package listing

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	sectionPrefixes = []string{"title_", "specs_", "table_", "meta_"}
	trailingDigits  = regexp.MustCompile(`\d+$`)
	valueSeparators = regexp.MustCompile(`[/,]`)
	titleCaser      = cases.Title(language.English)
)

// NormalizeKey strips the section wrapper from an attribute key, turning
// "title_cpu_model_key" and "cpu_model" both into "cpu_model". Normalized
// keys are lower-case.
func NormalizeKey(key string) string {
	k := strings.ToLower(key)
	for _, p := range sectionPrefixes {
		if strings.HasPrefix(k, p) {
			k = k[len(p):]
			break
		}
	}
	return strings.TrimSuffix(k, "_key")
}

// BaseKey strips a trailing numbered-variant suffix: "cpu_model2" -> "cpu_model".
func BaseKey(key string) string {
	return trailingDigits.ReplaceAllString(key, "")
}

// IsNumberedVariant reports whether key is a numbered variant of base,
// i.e. the base name followed by one or more digits ("cpu_model2").
func IsNumberedVariant(key, base string) bool {
	if !strings.HasPrefix(key, base) || key == base {
		return false
	}
	suffix := key[len(base):]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return suffix != ""
}

// SplitValues splits a possibly compound value on slash or comma, trims each
// item and drops empties: "i5/i7, i9" -> ["i5", "i7", "i9"].
func SplitValues(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, item := range valueSeparators.Split(value, -1) {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NormalizeSection rewrites a raw section map onto normalized keys. When two
// raw keys collapse onto the same normalized key the lexically later raw key
// wins, keeping the result deterministic.
func NormalizeSection(section map[string]string) map[string]string {
	out := make(map[string]string, len(section))
	for _, raw := range SortedKeys(section) {
		out[NormalizeKey(raw)] = section[raw]
	}
	return out
}

// DisplayKey renders an attribute key for humans: "cpu_model" -> "Cpu Model".
func DisplayKey(key string) string {
	return titleCaser.String(strings.ReplaceAll(NormalizeKey(key), "_", " "))
}

// SortedKeys returns the map's keys in lexical order. Display strings and
// comparison output must not depend on map iteration order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedSet returns the members of a string set in lexical order.
func SortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
