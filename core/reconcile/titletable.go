package reconcile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"listing-reconciler/core/listing"
	"listing-reconciler/core/units"
)

// memoryTableMappings rename title attributes to the vocabulary memory
// category tables use.
var memoryTableMappings = map[string]string{
	"ram_application":      "application",
	"ram_capacity":         "capacity",
	"ram_modules":          "modules",
	"ram_config":           "config",
	"ram_error_correction": "error_correction",
	"ram_brand":            "manufacturer",
	"ram_speed_grade":      "speed_grade_range",
	"ram_total":            "total_capacity",
}

// CompareTitleVsTable compares the title view against the table. Numbered
// variants on either side fold into one aggregated comparison per base key;
// capacity ranges are honored in both directions; cpu_suffix never takes part.
func CompareTitleVsTable(ctx *Context, snap listing.Snapshot, sections map[string][]string, isPowerAdapter bool) Report {
	var report Report
	snap = snap.Clone()
	log := ctx.log()

	title := listing.NormalizeSection(snap.Title)
	specs := listing.NormalizeSection(snap.Specifics)
	shared := listing.NormalizeSection(snap.TableShared)

	entries := make([]map[string]string, 0, len(snap.TableEntries))
	for _, e := range snap.TableEntries {
		entries = append(entries, listing.NormalizeSection(e))
	}
	if len(entries) == 0 && len(shared) > 0 {
		entries = append(entries, map[string]string{})
	}
	if len(entries) == 0 && len(shared) == 0 {
		log.Debug("no table data for title comparison")
		return report
	}

	// A module configuration stands in for a missing table ram_size, so the
	// derived total takes part in common-key selection.
	if total, ok := injectDerivedRAMSize(shared, entries); ok {
		log.Debug("derived table ram size from module config", zap.String("total", total))
	}

	titleToTable, tableToTitle := titleTableMappings(ctx.Mappings)

	ramMappings := map[string]string{}
	if leaf := listing.LeafCategory(sections); listing.IsMemoryCategory(leaf) {
		log.Debug("applying memory category table mappings", zap.String("category", leaf))
		ramMappings = memoryTableMappings
	}

	tableKeys := make(map[string]struct{}, len(shared))
	for key := range shared {
		tableKeys[key] = struct{}{}
	}
	for _, entry := range entries {
		for key := range entry {
			tableKeys[key] = struct{}{}
		}
	}

	keys := titleTableKeys(title, tableKeys, titleToTable, tableToTitle, ramMappings)
	log.Debug("title vs table keys", zap.Strings("keys", keys))

	vc := ValueContext{
		Title:          map[string]string{},
		Specifics:      specs,
		Table:          combinedTable(shared, entries),
		IsMobileDevice: listing.IsMobileCategory(listing.LeafCategory(sections)),
	}
	multipleEntries := len(entries) > 1

	for _, base := range keys {
		titleValues := collectSectionValues(title, base)

		extraKeys := tableSearchKeys(base, titleToTable, tableToTitle, ramMappings)
		tableValues := collectTableValues(shared, entries, base, extraKeys)

		if len(titleValues) == 0 || len(tableValues) == 0 {
			log.Debug("skipping key, one side empty",
				zap.String("key", base),
				zap.Strings("title", titleValues),
				zap.Strings("table", tableValues))
			continue
		}

		displayKey := listing.DisplayKey(base)
		labelA := fmt.Sprintf("title_%s_key", base)
		titleDisplay := joinSlash(titleValues)
		tableDisplay := joinSlash(tableValues)

		if anyWildcard(titleValues) || anyWildcard(tableValues) {
			log.Debug("wildcard value, skipping comparison", zap.String("key", base))
			entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, titleDisplay, "table_values", tableDisplay, true, multipleEntries)
			report.add(entry)
			continue
		}

		if isCapacityKey(base) {
			if handled := titleTableRange(ctx, &report, base, displayKey, labelA, titleValues, tableValues, multipleEntries); handled {
				continue
			}
		}

		isMatch, unmatchedTitle, unmatchedTable := cardinalityMatch(ctx, base, titleValues, tableValues, vc)

		entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, titleDisplay, "table_entries", tableDisplay, isMatch, multipleEntries)
		report.add(entry)

		if !isMatch {
			report.Issues = append(report.Issues, entry)
			report.Consolidated = append(report.Consolidated, ConsolidatedMismatch{
				DisplayKey: displayKey,
				ValueA:     titleDisplay,
				ValueB:     tableDisplay,
				Entries:    "All Entries",
			})

			var parts []string
			if len(unmatchedTitle) > 0 {
				parts = append(parts, "Title extra: "+joinSlash(unmatchedTitle))
			}
			if len(unmatchedTable) > 0 {
				parts = append(parts, "Table extra: "+joinSlash(unmatchedTable))
			}
			issue := fmt.Sprintf("%s: Title has '%s', Table has '%s'", displayKey, titleDisplay, tableDisplay)
			if len(parts) > 0 {
				issue += " (" + strings.Join(parts, "; ") + ")"
			}
			report.addIssueString(issue)
			log.Debug("title vs table mismatch", zap.String("issue", issue))
		}
	}

	return report
}

// titleTableRange applies range containment for one aggregated capacity key.
// A range mismatch is consolidated across all entries.
func titleTableRange(ctx *Context, report *Report, base, displayKey, labelA string, titleValues, tableValues []string, multipleEntries bool) bool {
	titleDisplay := joinSlash(titleValues)
	tableDisplay := joinSlash(tableValues)

	direction := ""
	ok := false
	switch {
	case len(titleValues) == 1 && units.IsRangeFormat(titleValues[0]):
		ok = units.RangeContains(titleValues[0], tableValues)
		direction = fmt.Sprintf("%s: Title has range '%s', but table values '%s' include values outside this range", displayKey, titleDisplay, tableDisplay)
	case len(tableValues) == 1 && units.IsRangeFormat(tableValues[0]):
		ok = units.RangeContains(tableValues[0], titleValues)
		direction = fmt.Sprintf("%s: Table has range '%s', but title values '%s' include values outside this range", displayKey, tableDisplay, titleDisplay)
	default:
		return false
	}

	entry, _ := ctx.Rules.FormatComparison(displayKey, labelA, titleDisplay, "table_entries", tableDisplay, ok, multipleEntries)
	report.add(entry)
	if !ok {
		ctx.log().Debug("title vs table range mismatch", zap.String("key", base))
		report.Issues = append(report.Issues, entry)
		report.Consolidated = append(report.Consolidated, ConsolidatedMismatch{
			DisplayKey: displayKey,
			ValueA:     titleDisplay,
			ValueB:     tableDisplay,
			Entries:    "All Entries",
		})
		report.addIssueString(direction)
	}
	return true
}

// titleTableMappings splits the user mappings into the two directions between
// the title and table sections, keyed by normalized base key.
func titleTableMappings(mappings []KeyMapping) (titleToTable, tableToTitle map[string]string) {
	titleToTable = make(map[string]string)
	tableToTitle = make(map[string]string)
	for _, m := range mappings {
		switch {
		case m.Section1 == "title" && m.Section2 == "table":
			titleToTable[listing.NormalizeKey(m.Key1)] = listing.NormalizeKey(m.Key2)
		case m.Section1 == "table" && m.Section2 == "title":
			tableToTitle[listing.NormalizeKey(m.Key1)] = listing.NormalizeKey(m.Key2)
		}
	}
	return titleToTable, tableToTitle
}

// tableSearchKeys lists the table aliases for one title base key: the user
// mapping, any reverse mappings and the memory category rename.
func tableSearchKeys(base string, titleToTable, tableToTitle, ramMappings map[string]string) []string {
	var extra []string
	if mapped, ok := titleToTable[base]; ok {
		extra = append(extra, mapped)
	}
	for tableBase, titleBase := range tableToTitle {
		if titleBase == base {
			extra = append(extra, tableBase)
		}
	}
	if mapped, ok := ramMappings[base]; ok {
		extra = append(extra, mapped)
	}
	return extra
}

// titleTableKeys decides which base keys to compare: common bases (numbered
// variants aggregated under their base), user-mapped pairs and memory
// category renames. cpu_suffix is excluded entirely.
func titleTableKeys(title map[string]string, tableKeys map[string]struct{}, titleToTable, tableToTitle, ramMappings map[string]string) []string {
	titleGroups := baseGroups(listing.SortedKeys(title))

	tableKeyList := listing.SortedSet(tableKeys)
	tableGroups := baseGroups(tableKeyList)

	common := make(map[string]struct{})
	for base := range titleGroups {
		if _, ok := tableGroups[base]; ok {
			common[base] = struct{}{}
		}
	}

	tableHas := func(key string) bool {
		if _, ok := tableKeys[key]; ok {
			return true
		}
		_, ok := tableGroups[key]
		return ok
	}

	for titleBase, tableBase := range titleToTable {
		if _, ok := titleGroups[titleBase]; ok && tableHas(tableBase) {
			common[titleBase] = struct{}{}
		}
	}
	for tableBase, titleBase := range tableToTitle {
		if _, ok := titleGroups[titleBase]; ok && tableHas(tableBase) {
			common[titleBase] = struct{}{}
		}
	}
	for titleKey, tableKey := range ramMappings {
		if _, ok := title[titleKey]; ok && tableHas(tableKey) {
			common[titleKey] = struct{}{}
		}
	}

	compare := make(map[string]struct{})
	skip := make(map[string]struct{})

	for base := range common {
		titleVariants := titleGroups[base]
		tableVariants := tableGroups[base]

		numbered := false
		for _, key := range append(append([]string{}, titleVariants...), tableVariants...) {
			if key != base && listing.IsNumberedVariant(key, base) {
				numbered = true
				skip[key] = struct{}{}
			}
		}

		if numbered {
			compare[base] = struct{}{}
			continue
		}

		_, inTitle := title[base]
		mapped, hasMapping := titleToTable[base]
		_, isRAMKey := ramMappings[base]

		reverseMapped := false
		for tableBase, titleBase := range tableToTitle {
			if titleBase == base && tableHas(tableBase) {
				reverseMapped = true
				break
			}
		}

		if inTitle && (tableHas(base) || (hasMapping && tableHas(mapped)) || reverseMapped || isRAMKey) {
			compare[base] = struct{}{}
		}
	}

	// Exact key matches outside any numbered group still compare.
	for key := range title {
		if _, skipped := skip[key]; skipped {
			continue
		}
		if _, ok := tableKeys[key]; ok {
			compare[key] = struct{}{}
		}
	}

	delete(compare, cpuSuffixKey)
	delete(compare, "")

	return listing.SortedSet(compare)
}

// baseGroups groups keys by their base key.
func baseGroups(keys []string) map[string][]string {
	groups := make(map[string][]string)
	for _, key := range keys {
		base := listing.BaseKey(key)
		if base == "" {
			continue
		}
		groups[base] = append(groups[base], key)
	}
	return groups
}
