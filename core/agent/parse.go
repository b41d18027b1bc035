package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// Tier is the quality of a parsed LLM answer.
type Tier int

const (
	// TierOk means a JSON object was found.
	TierOk Tier = iota
	// TierDegraded means only raw text is available.
	TierDegraded
	// TierFailed means the answer was empty.
	TierFailed
)

func (t Tier) String() string {
	switch t {
	case TierOk:
		return "ok"
	case TierDegraded:
		return "degraded"
	default:
		return "failed"
	}
}

// Parsed is an LLM answer split into its JSON object and the text after it.
type Parsed struct {
	Tier   Tier
	Data   map[string]any
	Raw    string
	Rest   string
	Reason string
}

var fencePattern = regexp.MustCompile("```(?:json|JSON)?")

// ParseStructuredResponse extracts the first JSON object of an LLM answer.
// Code fences are stripped first. If the whole answer is no JSON object,
// the text from the first '{' is cut at every '}' in turn until a prefix
// parses.
func ParseStructuredResponse(raw string) Parsed {
	text := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	if text == "" {
		return Parsed{Tier: TierFailed, Raw: raw, Reason: "empty response"}
	}

	data := map[string]any{}
	if err := json.Unmarshal([]byte(text), &data); err == nil {
		return Parsed{Tier: TierOk, Data: data, Raw: raw}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return Parsed{Tier: TierDegraded, Raw: raw, Reason: "no JSON object found"}
	}

	for end := start + 1; end < len(text); end++ {
		if text[end] != '}' {
			continue
		}
		candidate := map[string]any{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &candidate); err == nil {
			return Parsed{
				Tier: TierOk,
				Data: candidate,
				Raw:  raw,
				Rest: strings.TrimSpace(text[end+1:]),
			}
		}
	}

	return Parsed{Tier: TierDegraded, Raw: raw, Reason: "no parseable JSON object"}
}

// Ok reports whether a JSON object was found.
func (p Parsed) Ok() bool {
	return p.Tier == TierOk
}

// String returns the value at key as text, or fallback when it is missing.
func (p Parsed) String(key string, fallback string) string {
	v, ok := p.Data[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

// Err returns the parse failure wrapped in ErrLLMResponseParse, nil when ok.
func (p Parsed) Err() error {
	if p.Ok() {
		return nil
	}
	return helper.NewError("parse structured response", fmt.Errorf("%w: %s", model.ErrLLMResponseParse, p.Reason))
}
