package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"listing-reconciler/core/listing"
	"listing-reconciler/core/reconcile"
	"listing-reconciler/feature/hardware"
)

// Dumps every reconciler's raw report for one snapshot as JSON. Handy when a
// rendered audit line looks wrong and the underlying entries are needed.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_audit SNAPSHOT [MAPPINGS]")
	}

	snap, sections, err := listing.Load(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	var mappings []reconcile.KeyMapping
	if len(os.Args) > 2 {
		mappings, err = hardware.LoadKeyMappings(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx := &reconcile.Context{
		Rules:    hardware.NewRules(),
		Mappings: mappings,
	}

	reports := map[string]reconcile.Report{
		"title_vs_specifics":    reconcile.CompareTitleVsSpecifics(ctx, snap, sections, false),
		"specifics_vs_table":    reconcile.CompareSpecificsVsTable(ctx, snap, sections, false),
		"title_vs_table":        reconcile.CompareTitleVsTable(ctx, snap, sections, false),
		"title_vs_metadata":     reconcile.CompareTitleVsMetadata(ctx, snap, sections, false),
		"specifics_vs_metadata": reconcile.CompareSpecificsVsMetadata(ctx, snap, sections, false),
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
