package hardware

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reconciler/core/reconcile"
)

func TestIsEquivalentNormalization(t *testing.T) {
	rules := NewRules()
	vc := reconcile.ValueContext{}

	tests := []struct {
		name string
		key  string
		a    string
		b    string
		want bool
	}{
		{"case fold", "brand", "Dell", "DELL", true},
		{"capacity tokens", "ram_size", "8 GB", "8gb", true},
		{"loose punctuation", "ram_type", "DDR4 SDRAM", "ddr4-sdram", true},
		{"different values", "brand", "Dell", "HP", false},
		{"both empty", "brand", "", "", true},
		{"one empty", "brand", "Dell", "", false},
		{"generation ordinals", "cpu_generation", "7th Gen", "7th Generation Intel", true},
		{"generation mismatch", "cpu_generation", "7th Gen", "8th Gen", false},
		{"screen size units", "screen_size", `13.3"`, "13.3 in", true},
		{"screen size mismatch", "screen_size", "13.3 in", "14 in", false},
		{"clock speed trailing zero", "cpu_speed", "2.80GHz", "2.8 GHz", true},
		{"mapped clock speed", "clock_speed", "1.90 GHz", "1.9GHz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.IsEquivalent(tt.key, tt.a, tt.b, vc))
		})
	}
}

func TestIsEquivalentSynonyms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `synonyms:
  storage_type:
    - ["ssd", "solid state drive"]
  "*":
    - ["grey", "gray"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	vc := reconcile.ValueContext{}
	assert.True(t, rules.IsEquivalent("storage_type", "SSD", "Solid State Drive", vc))
	assert.False(t, rules.IsEquivalent("color", "SSD", "Solid State Drive", vc), "synonym group is scoped to its attribute")
	assert.True(t, rules.IsEquivalent("color", "Grey", "Gray", vc), "global groups apply to every attribute")
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCPUModelsEquivalent(t *testing.T) {
	rules := NewRules()

	tests := []struct {
		name   string
		a      string
		b      string
		mobile bool
		want   bool
	}{
		{"noise words", "Intel Core i7-8650U", "i7-8650U", false, true},
		{"clock annotation", "i5-8350U @ 1.90GHz", "Intel Core i5-8350U", false, true},
		{"spaced token", "i7 8650U", "i7-8650U", false, true},
		{"different number", "i7-8650U", "i7-8550U", false, false},
		{"different family", "i5-8350U", "i7-8350U", false, false},
		{"suffix strict on desktop", "i7-8650U", "i7-8650", false, false},
		{"suffix relaxed on mobile", "i7-8650U", "i7-8650", true, true},
		{"containment fallback", "Celeron N4000", "N4000", false, true},
		{"empty side", "", "i7-8650U", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := reconcile.ValueContext{IsMobileDevice: tt.mobile}
			assert.Equal(t, tt.want, rules.CPUModelsEquivalent(tt.a, tt.b, vc))
		})
	}
}

func TestFormatComparison(t *testing.T) {
	rules := NewRules()

	entry, issue := rules.FormatComparison("Cpu Model", "title_cpu_model_key", "i5", "specs_cpu_model_key", "i7", false, true)
	assert.Equal(t, "Cpu Model", entry.DisplayKey)
	assert.False(t, entry.IsMatch)
	assert.True(t, entry.MultipleEntries)
	assert.Equal(t, "Cpu Model: 'i5' does not match 'i7'", issue)

	_, issue = rules.FormatComparison("Brand", "title_brand_key", "Dell", "specs_brand_key", "Dell", true, false)
	assert.Empty(t, issue, "matches produce no issue string")
}
