package reconcile

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"listing-reconciler/core/listing"
)

var (
	// Vendor part numbers in the style of network-equipment SKUs, e.g.
	// "WS-C3750G-24PS-S".
	partNumberRe = regexp.MustCompile(`(?i)([A-Z]{2}-C\d+[A-Za-z]*-\d+[A-Za-z]*-[A-Za-z])`)

	// Bare four-digit model numbers with an optional letter suffix.
	modelNumberRe = regexp.MustCompile(`(\d{4}[A-Za-z]*)`)

	// Trigger for the identifier-extraction path.
	partFamilyRe = regexp.MustCompile(`(?i)[A-Z]{2}-C\d+`)
)

// modelLinePrefix is stripped from model values before set comparison; the
// product line name appears inconsistently across sections.
const modelLinePrefix = "latitude"

// CompareMultiValueLists compares one attribute whose source value may hold
// several slash/comma-separated items against the values the table holds for
// the same key (shared value first, then every entry). It returns whether the
// two collections match plus display strings for both sides; mismatched
// displays carry an explicit "(Missing: ...)" or "(Unmatched: ...)" suffix.
func CompareMultiValueLists(ctx *Context, key, sourceVal string, snap listing.Snapshot, vc ValueContext) (bool, string, string) {
	snap = snap.Clone()
	log := ctx.log()

	sourceList := listing.SplitValues(sourceVal)

	shared := listing.NormalizeSection(snap.TableShared)
	var tableList []string
	if v := strings.TrimSpace(shared[key]); v != "" {
		tableList = append(tableList, v)
	}
	for _, rawEntry := range snap.TableEntries {
		entry := listing.NormalizeSection(rawEntry)
		if v := strings.TrimSpace(entry[key]); v != "" {
			tableList = append(tableList, v)
		}
	}

	switch key {
	case "model":
		return compareModelLists(ctx, sourceVal, sourceList, tableList)
	case "cpu_model":
		return compareCPUModelLists(ctx, sourceList, tableList, vc)
	default:
	}

	sourceSet := toSet(sourceList)
	tableSet := toSet(tableList)

	isMatch := true
	var unmatchedSource, unmatchedTable []string

	if len(sourceSet) > 0 && len(tableSet) > 0 {
		unmatchedSource = matchAgainst(ctx, key, listing.SortedSet(sourceSet), listing.SortedSet(tableSet), vc)
		unmatchedTable = matchAgainst(ctx, key, listing.SortedSet(tableSet), listing.SortedSet(sourceSet), vc)
		isMatch = len(unmatchedSource) == 0 && len(unmatchedTable) == 0
	} else {
		// One side empty: only empty-vs-empty matches.
		isMatch = len(sourceSet) == 0 && len(tableSet) == 0
	}

	sourceDisplay := displayList(sourceList)
	tableDisplay := displayList(tableList)
	if len(unmatchedSource) > 0 {
		sourceDisplay += " (Unmatched: " + joinComma(unmatchedSource) + ")"
	}
	if len(unmatchedTable) > 0 {
		tableDisplay += " (Unmatched: " + joinComma(unmatchedTable) + ")"
	}

	log.Debug("multi-value list comparison",
		zap.String("key", key),
		zap.Strings("source", sourceList),
		zap.Strings("table", tableList),
		zap.Bool("is_match", isMatch))
	return isMatch, sourceDisplay, tableDisplay
}

// compareModelLists handles the model key: structured identifier extraction
// first, then line-prefix normalization with substring fallback.
func compareModelLists(ctx *Context, sourceVal string, sourceList, tableList []string) (bool, string, string) {
	log := ctx.log()
	log.Debug("model list comparison",
		zap.String("source", sourceVal),
		zap.Strings("source_list", sourceList),
		zap.Strings("table_list", tableList))

	if hasPartNumberFamily(sourceList, tableList) {
		sourceIDs := extractIdentifiers(sourceList)
		tableIDs := extractIdentifiers(tableList)
		if len(sourceIDs) > 0 && len(tableIDs) > 0 && identifiersOverlap(sourceIDs, tableIDs) {
			return true, displayList(sourceList), displayList(tableList)
		}
	}

	sourceNorm := normalizeModels(sourceList)
	tableNorm := normalizeModels(tableList)

	isMatch := setsEqual(sourceNorm, tableNorm)
	if !isMatch && len(sourceNorm) > 0 && len(tableNorm) > 0 {
		// Partial model-number containment across normalized values.
		for _, s := range listing.SortedSet(toSet(sourceNorm)) {
			for _, t := range listing.SortedSet(toSet(tableNorm)) {
				if strings.Contains(s, t) || strings.Contains(t, s) {
					isMatch = true
					log.Debug("partial model match", zap.String("source", s), zap.String("table", t))
					break
				}
			}
			if isMatch {
				break
			}
		}
	}

	sourceDisplay := displayList(sourceList)
	tableDisplay := displayList(tableList)
	if !isMatch && len(sourceList) > 0 && len(tableList) > 0 {
		if missing := rawForMissing(sourceList, sourceNorm, tableNorm); len(missing) > 0 {
			tableDisplay += " (Missing: " + joinComma(missing) + ")"
		}
		if missing := rawForMissing(tableList, tableNorm, sourceNorm); len(missing) > 0 {
			sourceDisplay += " (Missing: " + joinComma(missing) + ")"
		}
	}

	return isMatch, sourceDisplay, tableDisplay
}

// compareCPUModelLists re-splits every collected value (compound CPU strings
// are common) and applies the specialized CPU predicate bidirectionally.
func compareCPUModelLists(ctx *Context, sourceList, tableList []string, vc ValueContext) (bool, string, string) {
	log := ctx.log()

	sourceSet := toSet(lowerAll(resplit(sourceList)))
	tableSet := toSet(lowerAll(resplit(tableList)))

	isMatch := true
	var unmatchedSource, unmatchedTable []string

	for _, s := range listing.SortedSet(sourceSet) {
		found := false
		for _, t := range listing.SortedSet(tableSet) {
			if ctx.Rules.CPUModelsEquivalent(s, t, vc) {
				found = true
				break
			}
		}
		if !found {
			unmatchedSource = append(unmatchedSource, s)
			isMatch = false
		}
	}
	if isMatch {
		for _, t := range listing.SortedSet(tableSet) {
			found := false
			for _, s := range listing.SortedSet(sourceSet) {
				if ctx.Rules.CPUModelsEquivalent(s, t, vc) {
					found = true
					break
				}
			}
			if !found {
				unmatchedTable = append(unmatchedTable, t)
				isMatch = false
			}
		}
	}

	log.Debug("cpu model list comparison",
		zap.Bool("is_match", isMatch),
		zap.Strings("unmatched_source", unmatchedSource),
		zap.Strings("unmatched_table", unmatchedTable))

	sourceDisplay := displayList(sourceList)
	tableDisplay := displayList(tableList)
	if len(unmatchedSource) > 0 {
		sourceDisplay += " (Unmatched: " + joinComma(unmatchedSource) + ")"
	}
	if len(unmatchedTable) > 0 {
		tableDisplay += " (Unmatched: " + joinComma(unmatchedTable) + ")"
	}
	return isMatch, sourceDisplay, tableDisplay
}

func hasPartNumberFamily(lists ...[]string) bool {
	for _, list := range lists {
		for _, item := range list {
			if strings.Contains(strings.ToLower(item), "catalyst") || partFamilyRe.MatchString(item) {
				return true
			}
		}
	}
	return false
}

// extractIdentifiers pulls vendor part numbers (or bare model numbers) out of
// each item; items without either pattern pass through whole.
func extractIdentifiers(items []string) []string {
	var ids []string
	for _, item := range items {
		if matches := partNumberRe.FindAllString(item, -1); len(matches) > 0 {
			ids = append(ids, matches...)
			continue
		}
		if matches := modelNumberRe.FindAllString(item, -1); len(matches) > 0 {
			ids = append(ids, matches...)
			continue
		}
		ids = append(ids, item)
	}
	return ids
}

func identifiersOverlap(sourceIDs, tableIDs []string) bool {
	for _, s := range sourceIDs {
		for _, t := range tableIDs {
			sl, tl := strings.ToLower(s), strings.ToLower(t)
			if strings.Contains(sl, tl) || strings.Contains(tl, sl) {
				return true
			}
		}
	}
	return false
}

func normalizeModels(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		n := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(item), modelLinePrefix, ""))
		out = append(out, n)
	}
	return out
}

// rawForMissing maps normalized members absent from the other side back to
// their raw spellings for display.
func rawForMissing(raw, norm, other []string) []string {
	otherSet := toSet(other)
	var missing []string
	seen := make(map[string]struct{})
	for i, n := range norm {
		if _, ok := otherSet[n]; ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if i < len(raw) {
			missing = append(missing, raw[i])
		}
	}
	sort.Strings(missing)
	return missing
}

func resplit(items []string) []string {
	var out []string
	for _, item := range items {
		out = append(out, listing.SplitValues(item)...)
	}
	return out
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.ToLower(strings.TrimSpace(item)))
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func setsEqual(a, b []string) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func displayList(items []string) string {
	if len(items) == 0 {
		return "N/A"
	}
	return joinComma(items)
}
