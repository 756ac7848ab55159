// Package reconcile cross-checks the four extracted views of a marketplace
// listing: the title, the item specifics panel, the variation table and the
// platform metadata.
//
// Each comparison function takes a listing snapshot and returns a Report with
// every comparison performed, the mismatched subset, rendered issue strings
// and (for table comparisons) consolidated per-entry mismatches.
//
// # Architecture
//
// The package consists of three main parts:
//
// 1. Reconcilers: one function per view pair (CompareTitleVsSpecifics,
// CompareSpecificsVsTable, CompareTitleVsTable, CompareTitleVsMetadata,
// CompareSpecificsVsMetadata) plus CompareMultiValueLists for compound
// attributes. They own the structural policy: numbered-variant aggregation,
// subset versus full matching by value cardinality, capacity range
// containment and the "see notes" wildcard.
//
// 2. Equivalence: an injected collaborator that judges whether two values
// mean the same thing for an attribute and renders comparison records.
// The hardware rule set lives in feature/hardware.
//
// 3. Context: the logger, equivalence rules and user key mappings for one
// pass. Everything is passed explicitly; the package holds no process-wide
// state and never mutates its inputs (snapshots are cloned on entry).
//
// # Usage Example
//
//	rules := hardware.NewRules()
//	ctx := &reconcile.Context{Logger: log, Rules: rules, Mappings: mappings}
//
//	report := reconcile.CompareSpecificsVsTable(ctx, snap, sections, false)
//	for _, issue := range report.IssueStrings {
//	    fmt.Println(issue)
//	}
package reconcile
