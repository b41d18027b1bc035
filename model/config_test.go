package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIndexConfig(t *testing.T) {
	t.Run("Returns news chunking defaults", func(t *testing.T) {
		config := DefaultIndexConfig()

		assert.Equal(t, 500, config.ChunkSize, "Default ChunkSize should be 500")
		assert.Equal(t, 50, config.ChunkOverlap, "Default ChunkOverlap should be 50")
		assert.Equal(t, []string{"\n\n", "\n", ".", " "}, config.Separators, "Default separators go from paragraph to word")
		assert.Equal(t, 3, config.TopK, "Default TopK should be 3")
	})
}

func TestFocusMinRelevance(t *testing.T) {
	t.Run("Financial focus raises floor to 1.0", func(t *testing.T) {
		assert.Equal(t, 1.0, FocusFinancial.MinRelevance(0.5))
		assert.Equal(t, 2.0, FocusFinancial.MinRelevance(2.0), "Expected higher values to be kept")
	})

	t.Run("Technical focus raises floor to 0.7", func(t *testing.T) {
		assert.Equal(t, 0.7, FocusTechnical.MinRelevance(0.2))
	})

	t.Run("Business focus keeps value", func(t *testing.T) {
		assert.Equal(t, 0.2, FocusBusiness.MinRelevance(0.2))
	})
}
