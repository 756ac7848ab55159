package reconcile

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"listing-reconciler/core/listing"
	"listing-reconciler/core/units"
)

// titlePlaceholders mark listings whose title extraction failed; comparing
// against them only produces noise.
var titlePlaceholders = map[string]struct{}{
	"Model: Unknown Title": {},
	"Unknown Title":        {},
}

// fixedTitleSpecsMappings are attribute renames that always apply between the
// title and specifics views.
var fixedTitleSpecsMappings = []KeyMapping{
	{Section1: "title", Key1: "cpu_speed", Section2: "specifics", Key2: "clock_speed"},
}

// memoryCategoryMappings apply only to listings in a memory product category,
// where the specifics panel uses the generic capacity vocabulary.
var memoryCategoryMappings = []KeyMapping{
	{Section1: "title", Key1: "ram_size", Section2: "specifics", Key2: "total_capacity"},
	{Section1: "title", Key1: "ram_total", Section2: "specifics", Key2: "total_capacity"},
	{Section1: "title", Key1: "ram_type", Section2: "specifics", Key2: "type"},
	{Section1: "title", Key1: "ram_modules", Section2: "specifics", Key2: "number_of_modules"},
}

// noStorageValues are title storage values that legitimately have no
// specifics counterpart.
var noStorageValues = map[string]struct{}{
	"no storage": {},
	"none":       {},
	"no":         {},
	"n/a":        {},
	"no (m.2)":   {},
}

// CompareTitleVsSpecifics compares the title view against the specifics
// panel: common keys first (numbered title variants aggregated, capacity
// ranges honored in both directions), then the fixed and user key mappings,
// the memory-category renames and the storage key block.
func CompareTitleVsSpecifics(ctx *Context, snap listing.Snapshot, sections map[string][]string, isPowerAdapter bool) Report {
	var report Report
	snap = snap.Clone()
	log := ctx.log()

	title := listing.NormalizeSection(snap.Title)
	specs := listing.NormalizeSection(snap.Specifics)

	if _, placeholder := titlePlaceholders[strings.TrimSpace(title["model"])]; placeholder {
		log.Debug("skipping title comparison, placeholder model", zap.String("model", title["model"]))
		return report
	}

	vc := ValueContext{
		Title:          title,
		Specifics:      specs,
		Table:          firstTableEntry(snap),
		IsMobileDevice: listing.IsMobileCategory(listing.LeafCategory(sections)),
	}

	// A title module configuration stands in for a missing title ram_size
	// when the specifics declare one.
	if _, hasSize := title["ram_size"]; !hasSize {
		if _, specsHasSize := specs["ram_size"]; specsHasSize {
			for _, key := range listing.SortedKeys(title) {
				if !strings.Contains(key, "ram_config") {
					continue
				}
				if total, ok := units.ModuleConfigTotal(title[key]); ok {
					title["ram_size"] = total
					log.Debug("derived title ram size from config", zap.String("total", total))
					break
				}
			}
		}
	}

	common := commonKeys(title, specs)
	compared := make(map[string]struct{}, len(common))

	for _, key := range common {
		compared[key] = struct{}{}
		if key == "storage_capacity" || key == "storage_capacity2" {
			continue
		}
		tVal, sVal := title[key], specs[key]
		if strings.TrimSpace(tVal) == "" || strings.TrimSpace(sVal) == "" {
			continue
		}

		displayKey := listing.DisplayKey(key)
		labelA := fmt.Sprintf("title_%s_key", key)
		labelB := fmt.Sprintf("specs_%s_key", key)

		if isWildcard(sVal) {
			entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, tVal, labelB, sVal, true, false)
			report.add(entry)
			continue
		}

		// Numbered title variants are aggregated: any variant matching the
		// specifics value is a match for the whole attribute.
		if variants := variantValues(title, key); hasNumberedVariant(title, key) && len(variants) > 0 {
			isMatch := false
			for _, v := range variants {
				if ctx.Rules.IsEquivalent(key, v, sVal, vc) {
					isMatch = true
					break
				}
			}
			entry, issue := ctx.Rules.FormatComparison(displayKey, fmt.Sprintf("title_%s_keys", key), joinSlash(variants), labelB, sVal, isMatch, false)
			report.add(entry)
			if !isMatch {
				log.Debug("variant mismatch", zap.String("key", key), zap.Strings("title", variants), zap.String("specs", sVal))
				report.flag(entry, issue)
			}
			continue
		}

		if isCapacityKey(key) {
			if handled := pairwiseRange(ctx, &report, displayKey, labelA, tVal, labelB, sVal, true); handled {
				continue
			}
		}

		isMatch := ctx.Rules.IsEquivalent(key, tVal, sVal, vc)
		log.Debug("title vs specs", zap.String("key", key), zap.String("title", tVal), zap.String("specs", sVal), zap.Bool("is_match", isMatch))
		entry, issue := ctx.Rules.FormatComparison(displayKey, labelA, tVal, labelB, sVal, isMatch, false)
		report.add(entry)
		if !isMatch {
			report.flag(entry, issue)
		}
	}

	// Specifics keys absent from the title base keys may still have numbered
	// title variants.
	for _, key := range listing.SortedKeys(specs) {
		if _, done := compared[key]; done {
			continue
		}
		variants := variantValues(title, key)
		if len(variants) == 0 {
			continue
		}
		sVal := specs[key]

		isMatch := false
		for _, v := range variants {
			if ctx.Rules.IsEquivalent(key, v, sVal, vc) {
				isMatch = true
				break
			}
		}
		titleDisplay := joinSlash(variants)
		if !isMatch && titleDisplay == strings.ReplaceAll(sVal, ", ", "/") {
			isMatch = true
		}

		entry, issue := ctx.Rules.FormatComparison(listing.DisplayKey(key), fmt.Sprintf("title_%s_keys", key), titleDisplay, fmt.Sprintf("specs_%s_key", key), sVal, isMatch, false)
		report.add(entry)
		if !isMatch {
			log.Debug("variant-only mismatch", zap.String("key", key))
			report.flag(entry, issue)
		}
	}

	applyTitleSpecsMappings(ctx, &report, fixedTitleSpecsMappings, title, specs, vc, false)
	applyTitleSpecsMappings(ctx, &report, userTitleSpecsMappings(ctx.Mappings), title, specs, vc, true)

	if listing.IsMemoryCategory(listing.LeafCategory(sections)) {
		log.Debug("applying memory category comparisons")
		applyTitleSpecsMappings(ctx, &report, memoryCategoryMappings, title, specs, vc, false)
	}

	compareStorageKeys(ctx, &report, title, specs, vc)

	return report
}

// pairwiseRange handles range-vs-discrete for a single title/specs value
// pair, in either direction. flagMismatch false records matches only.
func pairwiseRange(ctx *Context, report *Report, displayKey, labelA, tVal, labelB, sVal string, flagMismatch bool) bool {
	if units.IsRangeFormat(tVal) {
		ok := units.RangeContains(tVal, listing.SplitValues(sVal))
		if !ok && !flagMismatch {
			return false
		}
		entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, tVal, labelB, sVal, ok, false)
		report.add(entry)
		if !ok {
			report.flag(entry, fmt.Sprintf("%s: Title has range '%s', but specs values '%s' include values outside this range", displayKey, tVal, sVal))
		}
		return true
	}
	if units.IsRangeFormat(sVal) {
		ok := units.RangeContains(sVal, listing.SplitValues(tVal))
		if !ok && !flagMismatch {
			return false
		}
		entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, tVal, labelB, sVal, ok, false)
		report.add(entry)
		if !ok {
			report.flag(entry, fmt.Sprintf("%s: Specs has range '%s', but title values '%s' include values outside this range", displayKey, sVal, tVal))
		}
		return true
	}
	return false
}

// applyTitleSpecsMappings compares mapped key pairs between the title and
// specifics sections. User mappings record range checks on success only.
func applyTitleSpecsMappings(ctx *Context, report *Report, mappings []KeyMapping, title, specs map[string]string, vc ValueContext, userDefined bool) {
	log := ctx.log()

	for _, m := range mappings {
		titleKey, specsKey, ok := titleSpecsKeys(m)
		if !ok {
			continue
		}
		tVal, hasT := title[titleKey]
		sVal, hasS := specs[specsKey]
		if !hasT || !hasS || strings.TrimSpace(tVal) == "" || strings.TrimSpace(sVal) == "" {
			continue
		}

		displayKey := listing.DisplayKey(titleKey)
		labelA := fmt.Sprintf("title_%s_key", titleKey)
		labelB := fmt.Sprintf("specs_%s_key", specsKey)
		if userDefined {
			labelA += " (mapped)"
			labelB += " (mapped)"
		}

		if isWildcard(sVal) {
			entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, tVal, labelB, sVal, true, false)
			report.add(entry)
			continue
		}

		if isCapacityKey(titleKey) || isCapacityKey(specsKey) {
			if handled := pairwiseRange(ctx, report, displayKey, labelA, tVal, labelB, sVal, !userDefined); handled {
				continue
			}
		}

		isMatch := ctx.Rules.IsEquivalent(titleKey, tVal, sVal, vc)
		log.Debug("mapped comparison",
			zap.String("title_key", titleKey),
			zap.String("specs_key", specsKey),
			zap.Bool("is_match", isMatch))
		entry, issue := ctx.Rules.FormatComparison(displayKey, labelA, tVal, labelB, sVal, isMatch, false)
		report.add(entry)
		if !isMatch {
			report.flag(entry, issue)
		}
	}
}

// titleSpecsKeys orients a mapping so key1 is the title side, in either
// declared direction. Non-title/specifics mappings are skipped.
func titleSpecsKeys(m KeyMapping) (titleKey, specsKey string, ok bool) {
	switch {
	case m.Section1 == "title" && m.Section2 == "specifics":
		return listing.NormalizeKey(m.Key1), listing.NormalizeKey(m.Key2), true
	case m.Section1 == "specifics" && m.Section2 == "title":
		return listing.NormalizeKey(m.Key2), listing.NormalizeKey(m.Key1), true
	default:
		return "", "", false
	}
}

func userTitleSpecsMappings(mappings []KeyMapping) []KeyMapping {
	var out []KeyMapping
	for _, m := range mappings {
		if _, _, ok := titleSpecsKeys(m); ok {
			out = append(out, m)
		}
	}
	return out
}

// compareStorageKeys handles the storage vocabulary explicitly: presence of a
// storage value in the title demands a specifics counterpart, and compound
// storage capacities compare as unordered multisets.
func compareStorageKeys(ctx *Context, report *Report, title, specs map[string]string, vc ValueContext) {
	log := ctx.log()

	hasStorageKey := false
	for _, key := range []string{"storage", "storage_type", "storage_capacity"} {
		if _, ok := title[key]; ok {
			hasStorageKey = true
			break
		}
	}
	if !hasStorageKey {
		return
	}

	tStorage, hasTitleStorage := title["storage"]
	sStorage, hasSpecsStorage := specs["storage"]
	switch {
	case hasTitleStorage && hasSpecsStorage:
		compareSingle(ctx, report, "Storage", "title_storage_key", tStorage, "specs_storage_key", sStorage, "storage", vc)
	case hasTitleStorage:
		if _, benign := noStorageValues[strings.ToLower(strings.TrimSpace(tStorage))]; !benign {
			log.Debug("title storage missing from specs", zap.String("title", tStorage))
			entry, issue := ctx.Rules.FormatComparison("Storage", "title_storage_key", tStorage, "specs_storage_key", "Missing", false, false)
			report.add(entry)
			report.flag(entry, issue)
		}
	}

	if tType, ok := title["storage_type"]; ok {
		if sType, ok := specs["storage_type"]; ok {
			compareSingle(ctx, report, "Storage Type", "title_storage_type_key", tType, "specs_storage_type_key", sType, "storage_type", vc)
		}
	}

	tCap, hasTitleCap := title["storage_capacity"]
	sCap, hasSpecsCap := specs["storage_capacity"]
	if !hasTitleCap || !hasSpecsCap {
		return
	}

	titleNorm := capacityVariantValues(title)
	specsNorm := capacityVariantValues(specs)
	if len(titleNorm) > 1 || len(specsNorm) > 1 {
		// Multiple capacities compare as unordered multisets.
		if multisetEqual(titleNorm, specsNorm) {
			entry, _ := ctx.Rules.FormatComparison("Storage Capacity", "storage_capacity_key (+ numbered)", joinSlash(rawCapacityValues(title)), "storage_capacity_key (+ numbered)", joinSlash(rawCapacityValues(specs)), true, false)
			report.add(entry)
			return
		}
		log.Debug("compound storage capacity mismatch", zap.Strings("title", titleNorm), zap.Strings("specs", specsNorm))
		isMatch := ctx.Rules.IsEquivalent("storage_capacity", tCap, sCap, vc)
		entry, issue := ctx.Rules.FormatComparison("Storage Capacity", "storage_capacity_key", tCap, "storage_capacity_key", sCap, isMatch, false)
		report.add(entry)
		if !isMatch {
			report.flag(entry, issue)
		}
		return
	}

	compareSingle(ctx, report, "Storage Capacity", "storage_capacity_key", tCap, "storage_capacity_key", sCap, "storage_capacity", vc)
}

// compareSingle runs the wildcard-then-equivalence check for one value pair.
func compareSingle(ctx *Context, report *Report, displayKey, labelA, valueA, labelB, valueB, key string, vc ValueContext) {
	if isWildcard(valueB) {
		entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, valueA, labelB, valueB, true, false)
		report.add(entry)
		return
	}
	isMatch := ctx.Rules.IsEquivalent(key, valueA, valueB, vc)
	entry, issue := ctx.Rules.FormatComparison(displayKey, labelA, valueA, labelB, valueB, isMatch, false)
	report.add(entry)
	if !isMatch {
		report.flag(entry, issue)
	}
}

var nonCapacityCharRe = regexp.MustCompile(`[^a-z0-9./-]`)

func normalizeCapacityValue(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	return nonCapacityCharRe.ReplaceAllString(v, "")
}

// capacityVariantValues collects the normalized storage capacities: the base
// key plus numbered variants, base first.
func capacityVariantValues(section map[string]string) []string {
	var values []string
	for _, raw := range rawCapacityValues(section) {
		values = append(values, normalizeCapacityValue(raw))
	}
	return values
}

func rawCapacityValues(section map[string]string) []string {
	var values []string
	if v := section["storage_capacity"]; strings.TrimSpace(v) != "" {
		values = append(values, v)
	}
	for _, key := range numberedVariantKeys(section, "storage_capacity") {
		if v := section[key]; strings.TrimSpace(v) != "" {
			values = append(values, v)
		}
	}
	return values
}

// variantValues returns the raw title values for a base key: the base value
// first, then numbered variants in ascending numeric order.
func variantValues(section map[string]string, base string) []string {
	var values []string
	if v, ok := section[base]; ok && strings.TrimSpace(v) != "" {
		values = append(values, v)
	}
	for _, key := range numberedVariantKeys(section, base) {
		if v := section[key]; strings.TrimSpace(v) != "" {
			values = append(values, v)
		}
	}
	return values
}

func hasNumberedVariant(section map[string]string, base string) bool {
	for key := range section {
		if listing.IsNumberedVariant(key, base) {
			return true
		}
	}
	return false
}

// numberedVariantKeys returns the numbered variant keys for a base, ordered
// by their numeric suffix.
func numberedVariantKeys(section map[string]string, base string) []string {
	var keys []string
	for key := range section {
		if listing.IsNumberedVariant(key, base) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(keys[i], base))
		nj, _ := strconv.Atoi(strings.TrimPrefix(keys[j], base))
		return ni < nj
	})
	return keys
}

func multisetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// commonKeys returns, sorted, the keys present in both sections.
func commonKeys(a, b map[string]string) []string {
	set := make(map[string]struct{})
	for key := range a {
		if _, ok := b[key]; ok {
			set[key] = struct{}{}
		}
	}
	return listing.SortedSet(set)
}
