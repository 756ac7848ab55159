package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reconciler/core/listing"
)

func TestCompareTitleVsSpecificsPlaceholderSkips(t *testing.T) {
	snap := listing.Snapshot{
		Title:     map[string]string{"title_model_key": "Unknown Title", "title_brand_key": "Dell"},
		Specifics: map[string]string{"specs_brand_key": "HP"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	assert.Empty(t, report.Entries)
	assert.Empty(t, report.Issues)
}

func TestCompareTitleVsSpecificsCommonKeys(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{
			"title_brand_key":     "Dell",
			"title_cpu_model_key": "i5-8350U",
		},
		Specifics: map[string]string{
			"specs_brand_key":     "Dell",
			"specs_cpu_model_key": "i7-8650U",
		},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	brand, ok := findEntry(report.Entries, "Brand")
	require.True(t, ok)
	assert.True(t, brand.IsMatch)
	assert.Equal(t, "title_brand_key", brand.LabelA)
	assert.Equal(t, "specs_brand_key", brand.LabelB)

	model, ok := findEntry(report.Entries, "Cpu Model")
	require.True(t, ok)
	assert.False(t, model.IsMatch)
	assert.Len(t, report.Issues, 1)
}

func TestCompareTitleVsSpecificsWildcard(t *testing.T) {
	snap := listing.Snapshot{
		Title:     map[string]string{"title_cpu_model_key": "i5-8350U"},
		Specifics: map[string]string{"specs_cpu_model_key": "see notes"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Model")
	require.True(t, ok)
	assert.True(t, entry.IsMatch)
	assert.Empty(t, report.Issues)
}

func TestCompareTitleVsSpecificsNumberedVariants(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{
			"title_cpu_generation_key":  "7th Gen",
			"title_cpu_generation2_key": "8th Gen",
		},
		Specifics: map[string]string{"specs_cpu_generation_key": "8th Gen"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Generation")
	require.True(t, ok)
	assert.True(t, entry.IsMatch, "any title variant matching the specs value matches")
	assert.Equal(t, "title_cpu_generation_keys", entry.LabelA)
	assert.Equal(t, "7th Gen/8th Gen", entry.ValueA)
}

func TestCompareTitleVsSpecificsVariantOnlyKeys(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{
			"title_cpu_model1_key": "i5-8350U",
			"title_cpu_model2_key": "i7-8650U",
		},
		Specifics: map[string]string{"specs_cpu_model_key": "i5-8350U, i7-8650U"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Model")
	require.True(t, ok)
	assert.True(t, entry.IsMatch, "slash-joined variants equal the comma-separated specs value")
	assert.Equal(t, "i5-8350U/i7-8650U", entry.ValueA)
}

func TestCompareTitleVsSpecificsRange(t *testing.T) {
	tests := []struct {
		name      string
		titleVal  string
		specsVal  string
		wantMatch bool
		wantIssue string
	}{
		{
			name:      "title range contains specs values",
			titleVal:  "4GB-16GB",
			specsVal:  "8GB",
			wantMatch: true,
		},
		{
			name:      "specs range contains title values",
			titleVal:  "8GB/16GB",
			specsVal:  "4GB-16GB",
			wantMatch: true,
		},
		{
			name:      "title range excludes specs value",
			titleVal:  "4GB-16GB",
			specsVal:  "32GB",
			wantMatch: false,
			wantIssue: "Ram Size: Title has range '4GB-16GB', but specs values '32GB' include values outside this range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := listing.Snapshot{
				Title:     map[string]string{"title_ram_size_key": tt.titleVal},
				Specifics: map[string]string{"specs_ram_size_key": tt.specsVal},
			}

			report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

			entry, ok := findEntry(report.Entries, "Ram Size")
			require.True(t, ok)
			assert.Equal(t, tt.wantMatch, entry.IsMatch)
			if tt.wantIssue != "" {
				assert.Contains(t, report.IssueStrings, tt.wantIssue)
			}
		})
	}
}

func TestCompareTitleVsSpecificsDerivedRAMSize(t *testing.T) {
	snap := listing.Snapshot{
		Title:     map[string]string{"title_ram_config_key": "2x16GB"},
		Specifics: map[string]string{"specs_ram_size_key": "8GB"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Ram Size")
	require.True(t, ok)
	assert.False(t, entry.IsMatch, "derived 32gb total against declared 8GB")
}

func TestCompareTitleVsSpecificsClockSpeedMapping(t *testing.T) {
	snap := listing.Snapshot{
		Title:     map[string]string{"title_cpu_speed_key": "2.80GHz"},
		Specifics: map[string]string{"specs_clock_speed_key": "2.80GHz"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Cpu Speed")
	require.True(t, ok)
	assert.True(t, entry.IsMatch)
	assert.Equal(t, "title_cpu_speed_key", entry.LabelA)
	assert.Equal(t, "specs_clock_speed_key", entry.LabelB)
}

func TestCompareTitleVsSpecificsUserMapping(t *testing.T) {
	mapping := KeyMapping{Section1: "title", Key1: "gpu", Section2: "specifics", Key2: "graphics"}
	snap := listing.Snapshot{
		Title:     map[string]string{"title_gpu_key": "GTX 1050"},
		Specifics: map[string]string{"specs_graphics_key": "GTX 1060"},
	}

	report := CompareTitleVsSpecifics(newTestContext(mapping), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Gpu")
	require.True(t, ok)
	assert.False(t, entry.IsMatch)
	assert.Equal(t, "title_gpu_key (mapped)", entry.LabelA)
	assert.Equal(t, "specs_graphics_key (mapped)", entry.LabelB)
}

func TestCompareTitleVsSpecificsMemoryCategory(t *testing.T) {
	sections := map[string][]string{
		"CATEGORY": {"[leaf_category_key]: Memory (RAM)"},
	}
	snap := listing.Snapshot{
		Title:     map[string]string{"title_ram_type_key": "DDR4"},
		Specifics: map[string]string{"specs_type_key": "DDR4"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, sections, false)

	entry, ok := findEntry(report.Entries, "Ram Type")
	require.True(t, ok)
	assert.True(t, entry.IsMatch)
	assert.Equal(t, "specs_type_key", entry.LabelB)
}

func TestCompareTitleVsSpecificsStorageMissing(t *testing.T) {
	snap := listing.Snapshot{
		Title:     map[string]string{"title_storage_key": "256GB SSD"},
		Specifics: map[string]string{"specs_brand_key": "Dell"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Storage")
	require.True(t, ok)
	assert.False(t, entry.IsMatch)
	assert.Equal(t, "Missing", entry.ValueB)
}

func TestCompareTitleVsSpecificsNoStorageIsBenign(t *testing.T) {
	snap := listing.Snapshot{
		Title:     map[string]string{"title_storage_key": "No Storage"},
		Specifics: map[string]string{"specs_brand_key": "Dell"},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	_, ok := findEntry(report.Entries, "Storage")
	assert.False(t, ok, "declared absence of storage needs no specifics counterpart")
}

func TestCompareTitleVsSpecificsCompoundStorageCapacity(t *testing.T) {
	snap := listing.Snapshot{
		Title: map[string]string{
			"title_storage_capacity_key":  "256GB",
			"title_storage_capacity2_key": "512GB",
		},
		Specifics: map[string]string{
			"specs_storage_capacity_key":  "512GB",
			"specs_storage_capacity2_key": "256GB",
		},
	}

	report := CompareTitleVsSpecifics(newTestContext(), snap, nil, false)

	entry, ok := findEntry(report.Entries, "Storage Capacity")
	require.True(t, ok)
	assert.True(t, entry.IsMatch, "compound capacities compare as unordered multisets")
	assert.Equal(t, "storage_capacity_key (+ numbered)", entry.LabelA)
	assert.Equal(t, "256GB/512GB", entry.ValueA)
	assert.Equal(t, "512GB/256GB", entry.ValueB)
}
