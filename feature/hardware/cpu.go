package hardware

import (
	"regexp"
	"strings"

	"listing-reconciler/core/reconcile"
)

// cpuNoiseWords are marketing tokens that carry no identity; they are removed
// before CPU model strings are compared.
var cpuNoiseWords = []string{
	"intel", "amd", "core", "ryzen", "pentium", "celeron",
	"processor", "cpu", "(r)", "(tm)", "®", "™",
}

// cpuClockRe strips a trailing clock annotation like "@ 1.90GHz".
var cpuClockRe = regexp.MustCompile(`@\s*\d+(?:\.\d+)?\s*ghz`)

// cpuTokenRe extracts the identifying token of a CPU model: family, number
// and suffix, e.g. "i7-8650U" or "i5 7300".
var cpuTokenRe = regexp.MustCompile(`\b(i[3579]|m[357]|a\d{1,2})[- ]?(\d{3,5})([a-z]{0,2})\b`)

// CPUModelsEquivalent reports whether two CPU model strings identify the same
// part. Marketing noise and clock annotations are stripped first; when both
// sides carry a family/number token the tokens decide, otherwise substring
// containment does. Mobile listings tolerate a missing suffix on one side.
func (r *Rules) CPUModelsEquivalent(a, b string, vc reconcile.ValueContext) bool {
	na, nb := normalizeCPUModel(a), normalizeCPUModel(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	ta := cpuTokenRe.FindStringSubmatch(na)
	tb := cpuTokenRe.FindStringSubmatch(nb)
	if ta != nil && tb != nil {
		if ta[1] != tb[1] || ta[2] != tb[2] {
			return false
		}
		if ta[3] == tb[3] {
			return true
		}
		// Suffix drift is tolerated for mobile devices, where extractors
		// routinely drop the power suffix.
		if vc.IsMobileDevice && (ta[3] == "" || tb[3] == "") {
			return true
		}
		return false
	}

	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func normalizeCPUModel(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = cpuClockRe.ReplaceAllString(v, "")
	for _, word := range cpuNoiseWords {
		v = strings.ReplaceAll(v, word, " ")
	}
	return strings.Join(strings.Fields(v), " ")
}
