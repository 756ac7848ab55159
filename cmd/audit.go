package cmd

import (
	"fmt"
	"strings"
	"time"

	"listing-reconciler/core/config"
	"listing-reconciler/core/listing"
	"listing-reconciler/core/logger"
	"listing-reconciler/core/reconcile"
	"listing-reconciler/feature/hardware"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the audit command
	mappingsPath string
	rulesPath    string
	strictAudit  bool
)

// auditCmd runs the cross-view reconciliation over one or more snapshots.
var auditCmd = &cobra.Command{
	Use:   "audit FILE...",
	Short: "Audit listing snapshots for cross-view mismatches",
	Long: `Audit extracted listing snapshots.

Each snapshot file holds the four extracted views of one listing (title,
item specifics, variation table, platform metadata). The audit compares
every attribute across view pairs and reports the values that disagree.

Examples:
  # Audit a single snapshot
  listing-reconciler audit listing.yaml

  # Audit a batch with user key mappings
  listing-reconciler audit --mappings key_mappings.yaml snapshots/*.yaml

  # Fail the pipeline when any mismatch is found
  listing-reconciler audit --strict listing.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&mappingsPath, "mappings", "", "Key mappings YAML file (overrides AUDIT_MAPPINGS_PATH)")
	auditCmd.Flags().StringVar(&rulesPath, "rules", "", "Equivalence rules YAML file (overrides AUDIT_RULES_PATH)")
	auditCmd.Flags().BoolVar(&strictAudit, "strict", false, "Exit non-zero when any snapshot has issues")

	RootCmd.AddCommand(auditCmd)
}

// reconcilers enumerates the view pairs in report order.
var reconcilers = []struct {
	Name string
	Run  func(*reconcile.Context, listing.Snapshot, map[string][]string, bool) reconcile.Report
}{
	{"Title vs Specifics", reconcile.CompareTitleVsSpecifics},
	{"Specifics vs Table", reconcile.CompareSpecificsVsTable},
	{"Title vs Table", reconcile.CompareTitleVsTable},
	{"Title vs Metadata", reconcile.CompareTitleVsMetadata},
	{"Specifics vs Metadata", reconcile.CompareSpecificsVsMetadata},
}

func runAudit(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()
	l = logger.WithSession(l, uuid.NewString())

	// Flags override environment configuration
	if mappingsPath == "" {
		mappingsPath = cfg.Audit.MappingsPath
	}
	if rulesPath == "" {
		rulesPath = cfg.Audit.RulesPath
	}
	strict := strictAudit || cfg.Audit.Strict

	rules := hardware.NewRules()
	if rulesPath != "" {
		rules, err = hardware.LoadRules(rulesPath)
		if err != nil {
			return fmt.Errorf("failed to load equivalence rules: %w", err)
		}
	}

	var mappings []reconcile.KeyMapping
	if mappingsPath != "" {
		ttl := time.Duration(cfg.Audit.MappingsTTL) * time.Second
		mappings, err = hardware.CachedKeyMappings(mappingsPath, ttl)
		if err != nil {
			return fmt.Errorf("failed to load key mappings: %w", err)
		}
	}

	ctx := &reconcile.Context{
		Logger:   l,
		Rules:    rules,
		Mappings: mappings,
	}

	l.Info("Starting listing audit",
		zap.Int("snapshots", len(args)),
		zap.Int("mappings", len(mappings)),
	)

	snapshotsWithIssues := 0
	for _, path := range args {
		issues, err := auditSnapshot(ctx, l, path)
		if err != nil {
			// A broken file must not abort the batch.
			l.Error("Snapshot failed", zap.String("path", path), zap.Error(err))
			snapshotsWithIssues++
			continue
		}
		if issues > 0 {
			snapshotsWithIssues++
		}
	}

	l.Info("Audit finished",
		zap.Int("snapshots", len(args)),
		zap.Int("snapshots_with_issues", snapshotsWithIssues),
	)

	if strict && snapshotsWithIssues > 0 {
		return fmt.Errorf("audit found issues in %d of %d snapshot(s)", snapshotsWithIssues, len(args))
	}
	return nil
}

// auditSnapshot runs every reconciler over one snapshot file and prints its
// report. It returns the number of issue strings found.
func auditSnapshot(ctx *reconcile.Context, l *zap.Logger, path string) (int, error) {
	snap, sections, err := listing.Load(path)
	if err != nil {
		return 0, err
	}

	for _, warning := range listing.Validate(snap) {
		l.Warn("Snapshot warning", zap.String("path", path), zap.String("warning", warning))
	}

	isPowerAdapter := isPowerAdapterCategory(sections)

	fmt.Printf("=== %s ===\n", path)
	totalIssues := 0
	for _, r := range reconcilers {
		report := r.Run(ctx, snap, sections, isPowerAdapter)
		printReport(r.Name, report)
		totalIssues += len(report.IssueStrings)
	}

	l.Info("Snapshot audited",
		zap.String("path", path),
		zap.Int("issues", totalIssues),
	)
	return totalIssues, nil
}

// printReport renders one reconciler's report to stdout.
func printReport(name string, report reconcile.Report) {
	fmt.Printf("\n--- %s ---\n", name)
	if len(report.Entries) == 0 {
		fmt.Println("  (nothing to compare)")
		return
	}

	for _, entry := range report.Entries {
		marker := "MATCH   "
		if !entry.IsMatch {
			marker = "MISMATCH"
		}
		fmt.Printf("  [%s] %s: %q vs %q\n", marker, entry.DisplayKey, entry.ValueA, entry.ValueB)
	}

	if len(report.IssueStrings) > 0 {
		fmt.Println("  Issues:")
		for _, issue := range report.IssueStrings {
			fmt.Printf("    - %s\n", issue)
		}
	}

	for _, cm := range report.Consolidated {
		fmt.Printf("  Consolidated: %s (%s): %q vs %q\n", cm.DisplayKey, cm.Entries, cm.ValueA, cm.ValueB)
	}
}

// isPowerAdapterCategory reports whether the raw CATEGORY section marks the
// listing as a power adapter, which downstream formatting treats specially.
func isPowerAdapterCategory(sections map[string][]string) bool {
	leaf := strings.ToLower(listing.LeafCategory(sections))
	return strings.Contains(leaf, "power adapter") || strings.Contains(leaf, "ac adapter")
}
