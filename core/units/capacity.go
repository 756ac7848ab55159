package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unit multipliers normalize every capacity to gigabytes before comparison.
const (
	mbPerGB = 0.001
	gbPerGB = 1
	tbPerGB = 1000
)

var (
	capacityRe     = regexp.MustCompile(`^(\d+(?:\.\d+)?)(gb|mb|tb)$`)
	rangeRe        = regexp.MustCompile(`^(\d+(?:\.\d+)?)(gb|mb|tb)-(\d+(?:\.\d+)?)(gb|mb|tb)$`)
	spacedTokenRe  = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*(gb|mb|tb)\s*$`)
	moduleConfigRe = regexp.MustCompile(`^(\d+)\s*x\s*(\d+)(gb|mb|tb)$`)
)

func multiplier(unit string) float64 {
	switch unit {
	case "mb":
		return mbPerGB
	case "tb":
		return tbPerGB
	default:
		return gbPerGB
	}
}

// ParseCapacity parses a discrete capacity value like "256GB" or "1.5tb" and
// returns its size in gigabytes. ok is false for anything that is not a single
// number immediately followed by a unit.
func ParseCapacity(value string) (gb float64, ok bool) {
	m := capacityRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(value)))
	if m == nil {
		return 0, false
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return size * multiplier(m[2]), true
}

// IsRangeFormat reports whether a value is a capacity range like "32GB-256GB"
// or "4gb-16gb". Matching is case-insensitive and tolerates surrounding space.
func IsRangeFormat(value string) bool {
	if value == "" {
		return false
	}
	return rangeRe.MatchString(strings.ToLower(strings.TrimSpace(value)))
}

// RangeBounds parses a capacity range into its gigabyte-normalized bounds.
func RangeBounds(value string) (minGB, maxGB float64, ok bool) {
	m := rangeRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(value)))
	if m == nil {
		return 0, 0, false
	}
	lo, err1 := strconv.ParseFloat(m[1], 64)
	hi, err2 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo * multiplier(m[2]), hi * multiplier(m[4]), true
}

// RangeContains reports whether every parseable value in values falls inside
// the given capacity range. It fails closed: an empty range, an empty value
// list, or any candidate that does not parse as "<number><unit>" yields false.
// Blank candidates are skipped rather than treated as violations.
func RangeContains(rangeValue string, values []string) bool {
	if rangeValue == "" || len(values) == 0 {
		return false
	}
	minGB, maxGB, ok := RangeBounds(rangeValue)
	if !ok {
		return false
	}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		gb, ok := ParseCapacity(v)
		if !ok {
			return false
		}
		if gb < minGB || gb > maxGB {
			return false
		}
	}
	return true
}

// NormalizeCapacityToken collapses capacity spellings so "8 GB" and "8gb"
// compare equal. Non-capacity tokens are lower-cased and trimmed unchanged.
func NormalizeCapacityToken(value string) string {
	if m := spacedTokenRe.FindStringSubmatch(strings.ToLower(value)); m != nil {
		return m[1] + m[2]
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// ModuleConfigTotal derives a total capacity from a module configuration
// string like "2x8GB" or "(1 x 16GB)", returning e.g. "16gb". ok is false
// when the value is not in module-configuration form.
func ModuleConfigTotal(config string) (string, bool) {
	s := strings.TrimSpace(config)
	s = strings.Trim(s, "()")
	m := moduleConfigRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return "", false
	}
	count, err1 := strconv.Atoi(m[1])
	size, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return "", false
	}
	return fmt.Sprintf("%d%s", count*size, m[3]), true
}
