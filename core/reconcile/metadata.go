package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"listing-reconciler/core/listing"
)

// cpuSuffixKey mismatches are recorded but never surfaced as user-facing
// issue strings: suffix drift between sections is common and low-signal.
const cpuSuffixKey = "cpu_suffix"

// CompareTitleVsMetadata compares the title view against the listing-platform
// metadata. Metadata comparisons are direct pairwise checks: no variant
// aggregation, no range logic, no cardinality branching.
func CompareTitleVsMetadata(ctx *Context, snap listing.Snapshot, sections map[string][]string, isPowerAdapter bool) Report {
	snap = snap.Clone()
	title := listing.NormalizeSection(snap.Title)
	meta := listing.NormalizeSection(snap.Metadata)
	mobile := listing.IsMobileCategory(listing.LeafCategory(sections))
	return compareAgainstMetadata(ctx, snap, "title", title, meta, mobile)
}

// CompareSpecificsVsMetadata compares the specifics panel against the
// listing-platform metadata.
func CompareSpecificsVsMetadata(ctx *Context, snap listing.Snapshot, sections map[string][]string, isPowerAdapter bool) Report {
	snap = snap.Clone()
	specs := listing.NormalizeSection(snap.Specifics)
	meta := listing.NormalizeSection(snap.Metadata)
	mobile := listing.IsMobileCategory(listing.LeafCategory(sections))
	return compareAgainstMetadata(ctx, snap, "specs", specs, meta, mobile)
}

func compareAgainstMetadata(ctx *Context, snap listing.Snapshot, sectionLabel string, section, meta map[string]string, mobile bool) Report {
	var report Report
	log := ctx.log()

	vc := ValueContext{
		Title:          listing.NormalizeSection(snap.Title),
		Specifics:      listing.NormalizeSection(snap.Specifics),
		Table:          firstTableEntry(snap),
		IsMobileDevice: mobile,
	}

	for _, key := range listing.SortedKeys(section) {
		metaVal, ok := meta[key]
		if !ok {
			continue
		}
		sectionVal := section[key]
		if sectionVal == "" || metaVal == "" {
			continue
		}

		labelA := fmt.Sprintf("%s_%s_key", sectionLabel, key)
		labelB := fmt.Sprintf("meta_%s_key", key)

		isMatch := ctx.Rules.IsEquivalent(key, sectionVal, metaVal, vc)
		entry, issue := ctx.Rules.FormatComparison(listing.DisplayKey(key), labelA, sectionVal, labelB, metaVal, isMatch, false)
		report.add(entry)

		if !isMatch {
			log.Debug("metadata mismatch",
				zap.String("key", key),
				zap.String(sectionLabel, sectionVal),
				zap.String("meta", metaVal))
			report.Issues = append(report.Issues, entry)
			if key != cpuSuffixKey {
				report.addIssueString(issue)
			}
		}
	}

	return report
}

// firstTableEntry exposes the first table row (normalized) to the equivalence
// rules; metadata comparisons never aggregate across rows.
func firstTableEntry(snap listing.Snapshot) map[string]string {
	if len(snap.TableEntries) == 0 {
		return map[string]string{}
	}
	return listing.NormalizeSection(snap.TableEntries[0])
}
