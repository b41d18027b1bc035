package search

import (
	"slices"
	"strings"
)

// jargonContext maps chipmaker and finance jargon to the terms a query using
// it is expanded with. Keys match case-insensitively.
var jargonContext = map[string]string{
	"H200":     "Nvidia H200 GPU artificial intelligence machine learning data center tensor core",
	"H100":     "Nvidia H100 GPU AI accelerator data center computing hopper architecture",
	"A100":     "Nvidia A100 GPU artificial intelligence machine learning ampere data center",
	"RTX":      "Nvidia RTX graphics processing unit ray tracing gaming professional",
	"GeForce":  "Nvidia GeForce gaming graphics card consumer market",
	"Radeon":   "AMD Radeon graphics processing unit gaming RDNA architecture",
	"RDNA":     "AMD RDNA graphics architecture gaming performance efficiency",
	"CDNA":     "AMD CDNA compute DNA data center AI acceleration instinct",
	"Xeon":     "Intel Xeon server processor data center enterprise scalable",
	"Core":     "Intel Core processor consumer desktop laptop performance",
	"foundry":  "semiconductor manufacturing fabrication services contract manufacturing",
	"fab":      "semiconductor fabrication facility manufacturing process technology",
	"node":     "semiconductor manufacturing process technology nanometer transistor density",
	"wafer":    "semiconductor silicon wafer chip manufacturing substrate",
	"TSMC":     "Taiwan Semiconductor Manufacturing Company foundry advanced process",
	"earnings": "quarterly earnings financial results revenue profit performance",
	"guidance": "financial guidance forecast outlook revenue expectations",
	"margin":   "gross margin profit margin financial performance profitability",
	"capex":    "capital expenditure investment spending infrastructure equipment",
	"opex":     "operational expenditure operating expenses business costs",
}

var lowerJargon = func() map[string]string {
	lower := make(map[string]string, len(jargonContext))
	for term, context := range jargonContext {
		lower[strings.ToLower(term)] = context
	}
	return lower
}()

// Companies are the chipmakers whose names add business context to a query.
var Companies = []string{"nvidia", "amd", "intel"}

var financialTerms = []string{"earnings", "revenue", "stock", "financial"}

const (
	financialContext = "quarterly financial results business performance"
	companyContext   = "corporation company business technology"
)

// ExpandQuery adds domain context to a query. The lowercased query words come
// first, followed by the context of every jargon word and of every company
// named in the query. Terms are deduplicated ignoring case, first one wins.
func ExpandQuery(query string) string {
	lowerQuery := strings.ToLower(query)
	words := strings.Fields(lowerQuery)

	terms := slices.Clone(words)
	for _, word := range words {
		if context, ok := lowerJargon[word]; ok {
			terms = append(terms, strings.Fields(context)...)
		}
	}

	for _, company := range Companies {
		if !strings.Contains(lowerQuery, company) {
			continue
		}
		if containsAny(lowerQuery, financialTerms) {
			terms = append(terms, strings.Fields(financialContext)...)
		} else {
			terms = append(terms, strings.Fields(companyContext)...)
		}
	}

	seen := map[string]bool{}
	unique := make([]string, 0, len(terms))
	for _, term := range terms {
		lower := strings.ToLower(term)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		unique = append(unique, term)
	}

	return strings.Join(unique, " ")
}

// MatchJargon returns the jargon terms appearing as words in text, in the
// order they first appear.
func MatchJargon(text string) []string {
	var matched []string
	seen := map[string]bool{}
	for _, word := range strings.FieldsFunc(text, isWordSeparator) {
		lower := strings.ToLower(word)
		if _, ok := lowerJargon[lower]; !ok || seen[lower] {
			continue
		}
		seen[lower] = true
		matched = append(matched, word)
	}
	return matched
}

func isWordSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-')
}

func containsAny(text string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

func findAll(text string, indicators []string) []string {
	var found []string
	for _, indicator := range indicators {
		if strings.Contains(text, indicator) {
			found = append(found, indicator)
		}
	}
	return found
}
