package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reconciler/core/listing"
)

func TestCompareTitleVsMetadata(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{
			"title_brand_key":      "Dell",
			"title_cpu_model_key":  "i7-8650U",
			"title_cpu_suffix_key": "U",
		},
		Metadata: map[string]string{
			"meta_brand_key":      "HP",
			"meta_cpu_model_key":  "i7-8650U",
			"meta_cpu_suffix_key": "H",
		},
	}

	report := CompareTitleVsMetadata(newTestContext(), snap, nil, false)

	require.Len(t, report.Entries, 3)
	assert.Len(t, report.Issues, 2)

	brand, ok := findEntry(report.Entries, "Brand")
	require.True(t, ok)
	assert.False(t, brand.IsMatch)
	assert.Equal(t, "title_brand_key", brand.LabelA)
	assert.Equal(t, "meta_brand_key", brand.LabelB)

	model, ok := findEntry(report.Entries, "Cpu Model")
	require.True(t, ok)
	assert.True(t, model.IsMatch)

	// cpu_suffix mismatches are recorded but never surfaced as issue strings.
	suffix, ok := findEntry(report.Issues, "Cpu Suffix")
	require.True(t, ok)
	assert.False(t, suffix.IsMatch)
	require.Len(t, report.IssueStrings, 1)
	assert.Contains(t, report.IssueStrings[0], "Brand")
}

func TestCompareSpecificsVsMetadata(t *testing.T) {
	snap := listing.Snapshot{
		Specifics: map[string]string{
			"specs_screen_size_key": "14 in",
			"specs_ram_size_key":    "16GB",
		},
		Metadata: map[string]string{
			"meta_screen_size_key": "14 in",
			"meta_ram_size_key":    "16 GB",
		},
	}

	report := CompareSpecificsVsMetadata(newTestContext(), snap, nil, false)

	require.Len(t, report.Entries, 2)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.IssueStrings)

	ram, ok := findEntry(report.Entries, "Ram Size")
	require.True(t, ok)
	assert.True(t, ram.IsMatch, "capacity tokens normalize before comparison")
	assert.Equal(t, "specs_ram_size_key", ram.LabelA)
}

func TestCompareMetadataSkipsMissingKeys(t *testing.T) {
	snap := listing.Snapshot{
		Title:    map[string]string{"title_brand_key": "Dell", "title_color_key": "Black"},
		Metadata: map[string]string{"meta_brand_key": "Dell"},
	}

	report := CompareTitleVsMetadata(newTestContext(), snap, nil, false)

	require.Len(t, report.Entries, 1)
	assert.Equal(t, "Brand", report.Entries[0].DisplayKey)
}

func TestCompareMetadataDoesNotMutateInput(t *testing.T) {
	meta := map[string]string{"meta_brand_key": "Dell"}
	snap := listing.Snapshot{
		Title:    map[string]string{"title_brand_key": "Dell"},
		Metadata: meta,
	}

	_ = CompareTitleVsMetadata(newTestContext(), snap, nil, false)

	assert.Equal(t, map[string]string{"meta_brand_key": "Dell"}, meta)
}
