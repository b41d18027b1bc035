package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTripletFormat(t *testing.T) {
	triplet := &Triplet{Subject: "Nvidia", Object: "Intel", Verb: "invests in", Detail: "$5 billion stake", Date: "2025-09-18"}

	t.Run("Format as verb with detail and date", func(t *testing.T) {
		assert.Equal(t, "invests in ($5 billion stake, 2025-09-18)", triplet.Format())
	})

	t.Run("Format as arrow", func(t *testing.T) {
		assert.Equal(t, "(Nvidia) --[invests in]--> (Intel)", triplet.Arrow())
	})

	t.Run("Key contains date", func(t *testing.T) {
		other := *triplet
		other.Date = "2025-09-19"
		assert.NotEqual(t, triplet.Key(), other.Key(), "Expected edges on different dates to have different keys")
	})
}
