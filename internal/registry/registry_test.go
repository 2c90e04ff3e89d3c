package registry

import (
	"testing"

	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	r := NewDefault(logging.NewDiscardLogger())
	assert.Equal(t, 14, r.Len())
	assert.True(t, r.Has(models.CategoryGroceries))
	assert.False(t, r.Has("groceries"), "names are case-sensitive")
}

func TestNew_SkipsDuplicatesAndBlanks(t *testing.T) {
	seed := []models.CategoryConfig{
		{Name: "Food"},
		{Name: ""},
		{Name: "Food"},
		{Name: "Fun"},
	}
	r := New(seed, logging.NewDiscardLogger())
	assert.Equal(t, []string{"Food", "Fun"}, r.Names())
}

func TestAddCategory(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantAdded bool
		wantLen   int
	}{
		{"new category", "Pets", true, 15},
		{"trimmed name", "  Pets  ", true, 15},
		{"empty name", "", false, 14},
		{"blank name", "   ", false, 14},
		{"existing name", models.CategoryGas, false, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefault(logging.NewDiscardLogger())
			assert.Equal(t, tt.wantAdded, r.AddCategory(tt.input))
			assert.Equal(t, tt.wantLen, r.Len())
		})
	}
}

func TestAddCategory_FirstUnusedPaletteColor(t *testing.T) {
	r := NewDefault(logging.NewDiscardLogger())

	// Seeds use emerald, then green is the first free palette entry.
	require.True(t, r.AddCategory("Pets"))
	c, ok := r.Lookup("Pets")
	require.True(t, ok)
	assert.Equal(t, "green", c.Color.ID)

	require.True(t, r.AddCategory("Kids"))
	c, _ = r.Lookup("Kids")
	assert.Equal(t, "lime", c.Color.ID)
}

func TestAddCategory_RandomWhenPaletteExhausted(t *testing.T) {
	calls := 0
	random := func(n int) int {
		calls++
		assert.Equal(t, 22, n)
		return 3
	}
	r := New(nil, logging.NewDiscardLogger(), WithRandom(random))

	for i := 0; i < 22; i++ {
		require.True(t, r.AddCategory(string(rune('A'+i))))
	}
	assert.Zero(t, calls, "random source must not be used while colors remain")

	require.True(t, r.AddCategory("Overflow"))
	c, _ := r.Lookup("Overflow")
	assert.Equal(t, 1, calls)
	assert.Equal(t, models.Palette()[3], c.Color)
}

func TestSetColor(t *testing.T) {
	r := NewDefault(logging.NewDiscardLogger())
	violet, _ := models.PaletteColor("violet")

	assert.True(t, r.SetColor(models.CategoryGas, violet))
	assert.Equal(t, violet, r.ColorFor(models.CategoryGas))

	assert.False(t, r.SetColor("Missing", violet))
	assert.Equal(t, 14, r.Len())
}

func TestColorFor_Fallback(t *testing.T) {
	r := NewDefault(logging.NewDiscardLogger())
	assert.Equal(t, models.FallbackColor, r.ColorFor("Unregistered"))
}

func TestList_ReturnsCopy(t *testing.T) {
	r := NewDefault(logging.NewDiscardLogger())
	list := r.List()
	list[0].Name = "Changed"
	assert.Equal(t, models.CategoryGroceries, r.Names()[0])
}
