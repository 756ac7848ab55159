package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reconciler/core/listing"
)

func TestCompareTitleVsTableAggregation(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{"title_cpu_model_key": "i5-7300U/i7-7600U"},
		TableEntries: []map[string]string{
			{"table_cpu_model_key": "i7-7600U"},
			{"table_cpu_model_key": "i5-7300U"},
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Model")
	require.True(t, ok)
	assert.True(t, entry.IsMatch)
	assert.True(t, entry.MultipleEntries)
	assert.Equal(t, "i5-7300U/i7-7600U", entry.ValueA)
	assert.Equal(t, "i5-7300U/i7-7600U", entry.ValueB)
}

func TestCompareTitleVsTableSubsetTolerated(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{"title_cpu_model_key": "i5-7300U"},
		TableEntries: []map[string]string{
			{"table_cpu_model_key": "i5-7300U"},
			{"table_cpu_model_key": "i7-7600U"},
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Model")
	require.True(t, ok)
	assert.True(t, entry.IsMatch, "table extras are tolerated when the title has fewer values")
	assert.Empty(t, report.Issues)
}

func TestCompareTitleVsTableMismatch(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{"title_color_key": "Black"},
		TableEntries: []map[string]string{
			{"table_color_key": "Red"},
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Color")
	require.True(t, ok)
	assert.False(t, entry.IsMatch)

	require.Len(t, report.Consolidated, 1)
	assert.Equal(t, "All Entries", report.Consolidated[0].Entries)

	require.Len(t, report.IssueStrings, 1)
	assert.Equal(t,
		"Color: Title has 'Black', Table has 'Red' (Title extra: Black)",
		report.IssueStrings[0])
}

func TestCompareTitleVsTableExcludesCPUSuffix(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{
			"title_cpu_suffix_key": "U",
			"title_brand_key":      "Dell",
		},
		TableEntries: []map[string]string{
			{"table_cpu_suffix_key": "H", "table_brand_key": "Dell"},
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	_, ok := findEntry(report.Entries, "Cpu Suffix")
	assert.False(t, ok, "cpu_suffix never takes part in title vs table")

	brand, ok := findEntry(report.Entries, "Brand")
	require.True(t, ok)
	assert.True(t, brand.IsMatch)
}

func TestCompareTitleVsTableRange(t *testing.T) {
	tests := []struct {
		name      string
		titleVal  string
		tableVals []string
		wantMatch bool
		wantIssue string
	}{
		{
			name:      "title range contains table values",
			titleVal:  "32GB-256GB",
			tableVals: []string{"64GB", "128GB"},
			wantMatch: true,
		},
		{
			name:      "table value outside title range",
			titleVal:  "32GB-256GB",
			tableVals: []string{"64GB", "512GB"},
			wantMatch: false,
			wantIssue: "Storage Capacity: Title has range '32GB-256GB', but table values '512GB/64GB' include values outside this range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := listing.Snapshot{
				Title: map[string]string{"title_storage_capacity_key": tt.titleVal},
			}
			for _, v := range tt.tableVals {
				snap.TableEntries = append(snap.TableEntries, map[string]string{"table_storage_capacity_key": v})
			}

			report := CompareTitleVsTable(newTestContext(), snap, nil, false)

			entry, ok := findEntry(report.Entries, "Storage Capacity")
			require.True(t, ok)
			assert.Equal(t, tt.wantMatch, entry.IsMatch)
			if tt.wantIssue != "" {
				assert.Contains(t, report.IssueStrings, tt.wantIssue)
				require.Len(t, report.Consolidated, 1)
				assert.Equal(t, "All Entries", report.Consolidated[0].Entries)
			}
		})
	}
}

func TestCompareTitleVsTableWildcard(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{"title_cpu_model_key": "i5-7300U"},
		TableEntries: []map[string]string{
			{"table_cpu_model_key": "See Notes"},
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Model")
	require.True(t, ok)
	assert.True(t, entry.IsMatch)
	assert.Equal(t, "table_values", entry.LabelB)
}

func TestCompareTitleVsTableDerivedRAMSize(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{"title_ram_size_key": "8GB"},
		TableEntries: []map[string]string{
			{"table_ram_config_key": "2x8GB"},
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Ram Size")
	require.True(t, ok, "the total derived from the module configuration must be compared")
	assert.False(t, entry.IsMatch, "a 2x8GB configuration totals 16GB, not 8GB")
	require.NotEmpty(t, report.IssueStrings)
	assert.Contains(t, report.IssueStrings[0], "Ram Size")
}

func TestCompareTitleVsTableRepeatable(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{
			"title_color_key":            "Black/Red",
			"title_cpu_model_key":        "i5-7300U",
			"title_storage_capacity_key": "32GB-256GB",
		},
		TableEntries: []map[string]string{
			{
				"table_color_key":            "Blue",
				"table_cpu_model_key":        "i5-7300U",
				"table_storage_capacity_key": "512GB",
			},
		},
	}

	first := CompareTitleVsTable(newTestContext(), snap, nil, false)
	require.NotEmpty(t, first.IssueStrings)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CompareTitleVsTable(newTestContext(), snap, nil, false))
	}
}

func TestCompareTitleVsTableUserMapping(t *testing.T) {
	mapping := KeyMapping{Section1: "title", Key1: "gpu", Section2: "table", Key2: "video_card"}
	snap := listing.Snapshot{
		Title: map[string]string{"title_gpu_key": "GTX 1050"},
		TableEntries: []map[string]string{
			{"table_video_card_key": "GTX 1050"},
		},
	}

	report := CompareTitleVsTable(newTestContext(mapping), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Gpu")
	require.True(t, ok)
	assert.True(t, entry.IsMatch)
}

func TestCompareTitleVsTableMemoryCategory(t *testing.T) {
	sections := map[string][]string{
		"CATEGORY": {"[leaf_category_key]: Computer Memory (RAM)"},
	}
	snap := listing.Snapshot{
		Title: map[string]string{"title_ram_brand_key": "Samsung"},
		TableEntries: []map[string]string{
			{"table_manufacturer_key": "Samsung"},
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, sections, false)

	entry, ok := findEntry(report.Entries, "Ram Brand")
	require.True(t, ok)
	assert.True(t, entry.IsMatch)
}

func TestCompareTitleVsTableNumberedTableVariants(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{"title_cpu_family_key": "i5/i7"},
		TableShared: map[string]string{
			"table_cpu_family1_key": "i5",
			"table_cpu_family2_key": "i7",
		},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Family")
	require.True(t, ok)
	assert.True(t, entry.IsMatch, "numbered table variants aggregate under the base key")
}

func TestCompareTitleVsTableNoTable(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{"title_brand_key": "Dell"},
	}

	report := CompareTitleVsTable(newTestContext(), snap, nil, false)

	assert.Empty(t, report.Entries)
}
