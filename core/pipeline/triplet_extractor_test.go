package pipeline

import (
	"testing"

	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTripletExtractor(t *testing.T) {
	t.Run("Extract triplets from headline", func(t *testing.T) {
		extractor, err := DefaultTripletExtractor(helper.ModelDir)
		if err != nil {
			t.Skipf("Skipping triplet extractor test - model not available: %v", err)
			return
		}

		triplets, err := extractor("Nvidia partnered with TSMC to produce Blackwell chips in Arizona.")
		require.NoError(t, err)
		for _, tr := range triplets {
			t.Logf("  - %s -[%s]-> %s", tr.Subject, tr.Relation.Verb, tr.Object)
		}
	})

	t.Run("Handle empty text", func(t *testing.T) {
		extractor, err := DefaultTripletExtractor(helper.ModelDir)
		if err != nil {
			t.Skipf("Skipping triplet extractor test - model not available: %v", err)
			return
		}

		triplets, err := extractor("  ")
		assert.NoError(t, err)
		assert.Empty(t, triplets)
	})
}

func TestParseREBELOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []model.RawTriplet
	}{
		{
			name:  "Single triplet",
			input: "<triplet> Nvidia <subj> partner-of <obj> TSMC",
			expected: []model.RawTriplet{
				{Subject: "Nvidia", Relation: model.Relation{Verb: "partner of", Detail: "headline"}, Object: "TSMC"},
			},
		},
		{
			name:  "Multiple triplets",
			input: "<triplet> Intel <subj> owned_by <obj> Intel Corporation <triplet> AMD <subj> Manufacturer <obj> Radeon",
			expected: []model.RawTriplet{
				{Subject: "Intel", Relation: model.Relation{Verb: "owned by", Detail: "headline"}, Object: "Intel Corporation"},
				{Subject: "AMD", Relation: model.Relation{Verb: "manufacturer", Detail: "headline"}, Object: "Radeon"},
			},
		},
		{
			name:     "Empty input",
			input:    "",
			expected: []model.RawTriplet{},
		},
		{
			name:     "Duplicates and self references are dropped",
			input:    "<triplet> AMD <subj> rival <obj> Intel <triplet> AMD <subj> rival <obj> Intel <triplet> AMD <subj> same as <obj> amd",
			expected: []model.RawTriplet{{Subject: "AMD", Relation: model.Relation{Verb: "rival", Detail: "headline"}, Object: "Intel"}},
		},
		{
			name:  "With extra whitespace",
			input: "<triplet>  Nvidia  <subj>  founded   by  <obj>  Jensen Huang  ",
			expected: []model.RawTriplet{
				{Subject: "Nvidia", Relation: model.Relation{Verb: "founded by", Detail: "headline"}, Object: "Jensen Huang"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseREBELOutput(tt.input, "headline")
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "AMD wins deal", firstSentence(" AMD wins deal. More text follows."))
	assert.Equal(t, "No terminator", firstSentence("No terminator"))
}
