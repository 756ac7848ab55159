package reconcile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"listing-reconciler/core/listing"
	"listing-reconciler/core/units"
)

// coverageKeys are the attributes checked for table coverage: when the
// specifics value is compound and the table has several entries, every option
// the specifics promise must appear somewhere in the table.
var coverageKeys = []string{
	"cpu_model", "cpu_family", "cpu_suffix", "ram_size",
	"screen_size", "cpu_speed", "cpu_generation",
}

// legacyStorageSpecsKeys / legacyStorageTableKeys drive the storage synonym
// comparison that predates per-capacity keys. Older listings spread storage
// facts across these names.
var (
	legacyStorageSpecsKeys = []string{"storage", "storage_type", "storage_capacity"}
	legacyStorageTableKeys = []string{"ssd", "hdd", "hard_drive", "storage_type", "storage_capacity"}
)

// CompareSpecificsVsTable compares the specifics panel against the table,
// aggregating numbered variants on both sides and choosing subset or full
// matching by value cardinality. It also applies user key mappings, the
// legacy storage synonyms and the coverage check for compound specifics
// values.
func CompareSpecificsVsTable(ctx *Context, snap listing.Snapshot, sections map[string][]string, isPowerAdapter bool) Report {
	var report Report
	snap = snap.Clone()
	log := ctx.log()

	specs := listing.NormalizeSection(snap.Specifics)
	title := listing.NormalizeSection(snap.Title)
	shared := listing.NormalizeSection(snap.TableShared)

	entries := make([]map[string]string, 0, len(snap.TableEntries))
	for _, e := range snap.TableEntries {
		entries = append(entries, listing.NormalizeSection(e))
	}

	// A table with only shared values still counts as one entry.
	if len(entries) == 0 && len(shared) > 0 {
		log.Debug("no table entries, using shared values as single entry")
		entries = append(entries, map[string]string{})
	}
	if len(entries) == 0 && len(shared) == 0 {
		log.Debug("no table data for specifics comparison")
		return report
	}

	// A module configuration stands in for a missing table ram_size, so the
	// derived total takes part in common-key selection.
	if total, ok := injectDerivedRAMSize(shared, entries); ok {
		log.Debug("derived table ram size from module config", zap.String("total", total))
	}

	vc := ValueContext{
		Title:          title,
		Specifics:      specs,
		Table:          combinedTable(shared, entries),
		IsMobileDevice: listing.IsMobileCategory(listing.LeafCategory(sections)),
	}

	multipleEntries := len(entries) > 1
	consolidator := newConsolidator()

	for _, base := range commonBaseKeys(specs, shared, entries) {
		specsValues := collectSectionValues(specs, base)
		if len(specsValues) == 0 {
			log.Debug("skipping key, no specifics values", zap.String("key", base))
			continue
		}
		tableValues := collectTableValues(shared, entries, base, nil)
		if len(tableValues) == 0 {
			log.Debug("skipping key, no table values", zap.String("key", base))
			continue
		}

		displayKey := listing.DisplayKey(base)
		labelA := fmt.Sprintf("specs_%s_key", base)
		specsDisplay := joinComma(specsValues)
		tableDisplay := joinComma(tableValues)

		if anyWildcard(specsValues) {
			log.Debug("wildcard specifics value, skipping comparison", zap.String("key", base))
			entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, specsDisplay, "table_values", tableDisplay, true, multipleEntries)
			report.add(entry)
			continue
		}

		if isCapacityKey(base) {
			if handled := rangeCompare(ctx, &report, rangeComparison{
				displayKey: displayKey,
				labelA:     labelA,
				labelB:     "table_entries",
				displayA:   specsDisplay,
				displayB:   tableDisplay,
				valuesA:    specsValues,
				valuesB:    tableValues,
				sideA:      "Specs",
				sideB:      "Table",
				multiEntry: multipleEntries,
			}); handled {
				continue
			}
		}

		isMatch, unmatchedSpecs, unmatchedTable := cardinalityMatch(ctx, base, specsValues, tableValues, vc)

		entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, specsDisplay, "table_entries", tableDisplay, isMatch, false)
		report.add(entry)

		if !isMatch {
			log.Debug("aggregate mismatch",
				zap.String("key", base),
				zap.Strings("specs", specsValues),
				zap.Strings("table", tableValues))
			report.Issues = append(report.Issues, entry)

			issue := fmt.Sprintf("%s: Specs has '%s', Table has '%s'", displayKey, specsDisplay, tableDisplay)
			if details := mismatchDetails(unmatchedSpecs, unmatchedTable); details != "" {
				issue += " (" + details + ")"
			}
			report.addIssueString(issue)
			consolidator.collective(displayKey, specsDisplay, tableDisplay)
		}
	}

	applySpecsTableMappings(ctx, &report, consolidator, specs, shared, entries, vc, multipleEntries)
	legacyStorageCompare(ctx, &report, specs, shared, entries, vc, multipleEntries)
	coverageCheck(ctx, &report, specs, shared, entries)

	consolidator.flush(&report, "Specs", len(entries))
	return report
}

// rangeComparison bundles the parameters for one range-containment check.
type rangeComparison struct {
	displayKey string
	labelA     string
	labelB     string
	displayA   string
	displayB   string
	valuesA    []string
	valuesB    []string
	sideA      string
	sideB      string
	multiEntry bool
}

// rangeCompare applies range containment in both directions when exactly one
// side is a single range value. It reports whether the key was handled.
func rangeCompare(ctx *Context, report *Report, rc rangeComparison) bool {
	log := ctx.log()

	if len(rc.valuesA) == 1 && units.IsRangeFormat(rc.valuesA[0]) {
		ok := units.RangeContains(rc.valuesA[0], rc.valuesB)
		entry, _ := ctx.Rules.FormatComparison(rc.displayKey, rc.labelA, rc.displayA, rc.labelB, rc.displayB, ok, rc.multiEntry)
		report.add(entry)
		if !ok {
			log.Debug("range mismatch", zap.String("range", rc.valuesA[0]), zap.Strings("values", rc.valuesB))
			report.flag(entry, fmt.Sprintf("%s: %s has range '%s', but %s values '%s' include values outside this range",
				rc.displayKey, rc.sideA, rc.displayA, strings.ToLower(rc.sideB), rc.displayB))
		}
		return true
	}

	if len(rc.valuesB) == 1 && units.IsRangeFormat(rc.valuesB[0]) {
		ok := units.RangeContains(rc.valuesB[0], rc.valuesA)
		entry, _ := ctx.Rules.FormatComparison(rc.displayKey, rc.labelA, rc.displayA, rc.labelB, rc.displayB, ok, rc.multiEntry)
		report.add(entry)
		if !ok {
			log.Debug("range mismatch", zap.String("range", rc.valuesB[0]), zap.Strings("values", rc.valuesA))
			report.flag(entry, fmt.Sprintf("%s: %s has range '%s', but %s values '%s' include values outside this range",
				rc.displayKey, rc.sideB, rc.displayB, strings.ToLower(rc.sideA), rc.displayA))
		}
		return true
	}

	return false
}

// cardinalityMatch picks the matching strategy by value counts. With the
// first side at or below the second side's count it is subset matching
// (extras on the second side are tolerated); otherwise every value on both
// sides needs a partner.
func cardinalityMatch(ctx *Context, key string, valuesA, valuesB []string, vc ValueContext) (bool, []string, []string) {
	if len(valuesA) <= len(valuesB) {
		unmatchedA := matchAgainst(ctx, key, valuesA, valuesB, vc)
		return len(unmatchedA) == 0, unmatchedA, nil
	}
	unmatchedA := matchAgainst(ctx, key, valuesA, valuesB, vc)
	unmatchedB := matchAgainst(ctx, key, valuesB, valuesA, vc)
	return len(unmatchedA) == 0 && len(unmatchedB) == 0, unmatchedA, unmatchedB
}

func mismatchDetails(unmatchedA, unmatchedB []string) string {
	var parts []string
	if len(unmatchedA) > 0 {
		parts = append(parts, "specs unmatched: "+joinComma(unmatchedA))
	}
	if len(unmatchedB) > 0 {
		parts = append(parts, "table unmatched: "+joinComma(unmatchedB))
	}
	return strings.Join(parts, "; ")
}

// applySpecsTableMappings runs the user-defined specifics-to-table mappings
// through the same wildcard, range and cardinality pipeline.
func applySpecsTableMappings(ctx *Context, report *Report, consolidator *mismatchConsolidator, specs, shared map[string]string, entries []map[string]string, vc ValueContext, multipleEntries bool) {
	log := ctx.log()

	for _, m := range ctx.Mappings {
		if m.Section1 != "specifics" || m.Section2 != "table" {
			continue
		}
		specsKey := listing.NormalizeKey(m.Key1)
		tableKey := listing.NormalizeKey(m.Key2)

		sVal, ok := specs[specsKey]
		if !ok || strings.TrimSpace(sVal) == "" {
			continue
		}

		tableSet := make(map[string]struct{})
		if v := strings.TrimSpace(shared[tableKey]); v != "" {
			tableSet[v] = struct{}{}
		}
		for _, entry := range entries {
			if v := strings.TrimSpace(entry[tableKey]); v != "" {
				tableSet[v] = struct{}{}
			}
		}
		if len(tableSet) == 0 {
			continue
		}
		tableValues := listing.SortedSet(tableSet)

		displayKey := listing.DisplayKey(specsKey)
		labelA := fmt.Sprintf("specs_%s_key (mapped)", specsKey)
		labelB := m.Key2 + " (mapped)"
		tableDisplay := joinComma(tableValues)

		if isCapacityKey(specsKey) && units.IsRangeFormat(sVal) {
			ok := units.RangeContains(sVal, tableValues)
			entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, sVal, labelB, tableDisplay, ok, multipleEntries)
			report.add(entry)
			if !ok {
				log.Debug("mapped range mismatch", zap.String("key", specsKey))
				report.flag(entry, fmt.Sprintf("%s: Specs has range '%s', but table values include values outside this range", displayKey, sVal))
			}
			continue
		}

		if isWildcard(sVal) {
			entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, sVal, labelB, tableDisplay, true, multipleEntries)
			report.add(entry)
			continue
		}

		specsValues := listing.SplitValues(sVal)
		isMatch, _, _ := cardinalityMatch(ctx, specsKey, specsValues, tableValues, vc)

		specsDisplay := joinComma(listing.SortedSet(toSet(specsValues)))
		entry, issue := ctx.Rules.FormatComparison(displayKey, labelA, specsDisplay, labelB, tableDisplay, isMatch, multipleEntries)
		report.add(entry)
		if !isMatch {
			report.flag(entry, issue)
			consolidator.collective(displayKey, specsDisplay, tableDisplay)
		}
	}
}

// legacyStorageCompare checks the specifics storage value against the older
// table storage synonyms. Only a mismatch produces a record.
func legacyStorageCompare(ctx *Context, report *Report, specs, shared map[string]string, entries []map[string]string, vc ValueContext, multipleEntries bool) {
	sVal, ok := specs["storage"]
	if !ok || strings.TrimSpace(sVal) == "" {
		return
	}

	storageSet := make(map[string]struct{})
	for _, entry := range entries {
		combined := combinedTable(shared, []map[string]string{entry})
		for _, key := range legacyStorageTableKeys {
			if v := strings.TrimSpace(combined[key]); v != "" {
				storageSet[v] = struct{}{}
			}
		}
	}
	if len(storageSet) == 0 {
		return
	}
	tableValues := listing.SortedSet(storageSet)

	specsValues := listing.SplitValues(sVal)
	unmatched := matchAgainst(ctx, "storage", specsValues, tableValues, vc)
	if len(unmatched) == 0 {
		return
	}

	ctx.log().Debug("legacy storage mismatch", zap.Strings("unmatched", unmatched))
	specsDisplay := joinComma(listing.SortedSet(toSet(specsValues)))
	entry, issue := ctx.Rules.FormatComparison("Storage", "specs_storage_key", specsDisplay, "table_storage_keys", joinComma(tableValues), false, multipleEntries)
	report.add(entry)
	report.flag(entry, issue)
}

// coverageCheck verifies that every option a compound specifics value
// promises appears somewhere in the table, for the high-signal hardware keys.
// It only runs when the table actually differentiates entries.
func coverageCheck(ctx *Context, report *Report, specs, shared map[string]string, entries []map[string]string) {
	if len(entries) <= 1 {
		return
	}
	log := ctx.log()

	for _, key := range coverageKeys {
		specsVal, ok := specs[key]
		if !ok || !containsSeparator(specsVal) {
			continue
		}

		tableVals := make(map[string]struct{})
		if key == "ram_size" {
			if total, ok := derivedRAMSize(shared, entries); ok {
				tableVals[units.NormalizeCapacityToken(total)] = struct{}{}
				log.Debug("coverage ram size from config", zap.String("total", total))
			}
		}
		for _, v := range collectTableValues(shared, entries, key, nil) {
			tableVals[units.NormalizeCapacityToken(v)] = struct{}{}
		}

		var missing []string
		for _, opt := range listing.SplitValues(specsVal) {
			norm := units.NormalizeCapacityToken(opt)
			if _, found := tableVals[norm]; !found {
				missing = append(missing, opt)
			}
		}
		if len(missing) == 0 {
			continue
		}

		log.Debug("coverage gap", zap.String("key", key), zap.Strings("missing", missing))
		entry := ComparisonEntry{
			DisplayKey:      listing.DisplayKey(key),
			LabelA:          fmt.Sprintf("specs_%s_key", key),
			ValueA:          specsVal,
			LabelB:          "table_entries",
			ValueB:          "Table missing: " + joinComma(missing),
			IsMatch:         false,
			MultipleEntries: true,
		}
		report.Issues = append(report.Issues, entry)
		report.addIssueString(fmt.Sprintf("Missing values in table for %s: %s", key, joinComma(missing)))
	}
}

// commonBaseKeys returns, sorted, the base keys present in both the specifics
// section and the table (shared values or any entry).
func commonBaseKeys(specs, shared map[string]string, entries []map[string]string) []string {
	specsBases := make(map[string]struct{})
	for key := range specs {
		if base := listing.BaseKey(key); base != "" {
			specsBases[base] = struct{}{}
		}
	}

	tableBases := make(map[string]struct{})
	for key := range shared {
		if base := listing.BaseKey(key); base != "" {
			tableBases[base] = struct{}{}
		}
	}
	for _, entry := range entries {
		for key := range entry {
			if base := listing.BaseKey(key); base != "" {
				tableBases[base] = struct{}{}
			}
		}
	}

	common := make(map[string]struct{})
	for base := range specsBases {
		if _, ok := tableBases[base]; ok {
			common[base] = struct{}{}
		}
	}
	return listing.SortedSet(common)
}

// mismatchConsolidator groups per-entry mismatches that share the same
// displayed values into one reported discrepancy.
type mismatchConsolidator struct {
	order  []consolidationKey
	groups map[consolidationKey][]int
}

type consolidationKey struct {
	displayKey string
	valueA     string
	valueB     string
}

// collectiveEntry marks a mismatch computed over aggregated value sets rather
// than a specific table entry.
const collectiveEntry = 0

func newConsolidator() *mismatchConsolidator {
	return &mismatchConsolidator{groups: make(map[consolidationKey][]int)}
}

func (c *mismatchConsolidator) record(displayKey, valueA, valueB string, entryIndex int) {
	key := consolidationKey{displayKey, valueA, valueB}
	if _, ok := c.groups[key]; !ok {
		c.order = append(c.order, key)
	}
	c.groups[key] = append(c.groups[key], entryIndex)
}

func (c *mismatchConsolidator) collective(displayKey, valueA, valueB string) {
	c.record(displayKey, valueA, valueB, collectiveEntry)
}

// flush appends one consolidated mismatch per group, in recording order, and
// renders the matching issue string. sideA names the non-table section.
func (c *mismatchConsolidator) flush(report *Report, sideA string, entryCount int) {
	for _, key := range c.order {
		indexes := c.groups[key]

		isCollective := false
		for _, idx := range indexes {
			if idx == collectiveEntry {
				isCollective = true
				break
			}
		}

		var entryDisplay, issue string
		switch {
		case isCollective:
			entryDisplay = "Collective Mismatch"
			issue = fmt.Sprintf("%s: %s has '%s', Table has '%s'", key.displayKey, sideA, key.valueA, key.valueB)
		case len(indexes) == entryCount:
			entryDisplay = "All Entries"
			issue = fmt.Sprintf("%s: '%s' in %s, '%s' in Table", key.displayKey, key.valueA, sideA, key.valueB)
		case len(indexes) == 1:
			entryDisplay = fmt.Sprintf("Entry %d", indexes[0])
			issue = fmt.Sprintf("%s: '%s' in %s, '%s' in Table Entry %d", key.displayKey, key.valueA, sideA, key.valueB, indexes[0])
		default:
			list := make([]string, 0, len(indexes))
			for _, idx := range indexes {
				list = append(list, fmt.Sprintf("%d", idx))
			}
			entryDisplay = "Entries " + joinComma(list)
			issue = fmt.Sprintf("%s: '%s' in %s, '%s' in Table Entries %s", key.displayKey, key.valueA, sideA, key.valueB, joinComma(list))
		}

		report.Consolidated = append(report.Consolidated, ConsolidatedMismatch{
			DisplayKey: key.displayKey,
			ValueA:     key.valueA,
			ValueB:     key.valueB,
			Entries:    entryDisplay,
		})
		report.addIssueString(issue)
	}
}
