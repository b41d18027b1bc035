package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/chipnews/model"
)

// rebelTripletPattern matches "<triplet> head <subj> relation <obj> tail".
var rebelTripletPattern = regexp.MustCompile(`<triplet>([^<]+)<subj>([^<]+)<obj>([^<]+)`)

// DefaultTripletExtractor creates a triplet extractor using the REBEL model.
// The onnx export is expected under modelDir/mrebel.
// The detail of extracted relations names the headline or sentence they came from.
func DefaultTripletExtractor(modelDir string) (TripletExtractFunc, error) {
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TextGenerationConfig{
		ModelPath: filepath.Join(modelDir, "mrebel", "mrebel_base_model.onnx"),
		Name:      "chipnews-rebel",
	}
	generationPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create REBEL pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create REBEL pipeline: %w", err)
	}

	return func(text string) ([]model.RawTriplet, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}

		output, err := generationPipeline.RunPipeline(context.Background(), []string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate with REBEL: %w", err)
		}
		if len(output.Responses) == 0 || output.Responses[0] == "" {
			return nil, nil
		}

		return parseREBELOutput(output.Responses[0], firstSentence(text)), nil
	}, nil
}

// parseREBELOutput parses REBEL model output into triplets, dropping
// duplicates and self references.
func parseREBELOutput(generated string, detail string) []model.RawTriplet {
	triplets := []model.RawTriplet{}
	seen := map[model.RawTriplet]bool{}

	for _, match := range rebelTripletPattern.FindAllStringSubmatch(generated, -1) {
		if len(match) != 4 {
			continue
		}
		triplet := model.RawTriplet{
			Subject:  strings.TrimSpace(match[1]),
			Relation: model.Relation{Verb: normalizeVerb(match[2]), Detail: detail},
			Object:   strings.TrimSpace(match[3]),
		}
		if triplet.Subject == "" || triplet.Object == "" || triplet.Relation.Verb == "" {
			continue
		}
		if strings.EqualFold(triplet.Subject, triplet.Object) || seen[triplet] {
			continue
		}
		seen[triplet] = true
		triplets = append(triplets, triplet)
	}

	return triplets
}

// normalizeVerb lowercases a relation name and turns separators into single spaces.
func normalizeVerb(relation string) string {
	normalized := strings.ToLower(relation)
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	return strings.Join(strings.Fields(normalized), " ")
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".\n"); i > 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}
