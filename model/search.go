package model

// SourceTier is the credibility class of a result's domain.
type SourceTier string

const (
	SourceTierPremium     SourceTier = "premium"
	SourceTierEstablished SourceTier = "established"
	SourceTierSpecialized SourceTier = "specialized"
	SourceTierUnknown     SourceTier = "unknown"
)

// ContentType is the topical class of a result.
type ContentType string

const (
	ContentTypeFinancialNews    ContentType = "financial_news"
	ContentTypeBusinessAnalysis ContentType = "business_analysis"
	ContentTypeTechBusiness     ContentType = "tech_business"
	ContentTypeConsumerContent  ContentType = "consumer_content"
	ContentTypeGeneralNews      ContentType = "general_news"
)

// Significance is the business impact class of a result.
type Significance string

const (
	SignificanceHighImpact     Significance = "high_impact"
	SignificanceModerateImpact Significance = "moderate_impact"
	SignificanceMinorUpdate    Significance = "minor_update"
	SignificanceRoutineNews    Significance = "routine_news"
)

// RawResult is a single hit returned by a search provider.
type RawResult struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}

// SearchMetadata holds the reasoning behind a result's classification.
type SearchMetadata struct {
	ExpandedQuery         string   `json:"expanded_query"`
	OriginalQuery         string   `json:"original_query"`
	SourceDescription     string   `json:"source_description"`
	ContentReasoning      string   `json:"content_reasoning"`
	SignificanceReasoning string   `json:"significance_reasoning"`
	KeyIndicators         []string `json:"key_indicators"`
	IsBusinessSource      bool     `json:"is_business_source"`
}

// SearchResult is a classified and ranked search hit.
type SearchResult struct {
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	Snippet        string         `json:"snippet"`
	SourceTier     SourceTier     `json:"source_tier"`
	ContentType    ContentType    `json:"content_type"`
	Significance   Significance   `json:"significance"`
	OpinionSummary string         `json:"opinion_summary"`
	Metadata       SearchMetadata `json:"search_metadata"`
}

// Priority is the integer ranking score of the result, higher first.
func (r *SearchResult) Priority() int {
	priority := 0

	switch r.SourceTier {
	case SourceTierPremium:
		priority += 3
	case SourceTierEstablished:
		priority += 2
	case SourceTierSpecialized:
		priority += 1
	}

	switch r.ContentType {
	case ContentTypeFinancialNews:
		priority += 3
	case ContentTypeBusinessAnalysis:
		priority += 2
	case ContentTypeTechBusiness:
		priority += 1
	}

	switch r.Significance {
	case SignificanceHighImpact:
		priority += 3
	case SignificanceModerateImpact:
		priority += 2
	case SignificanceMinorUpdate:
		priority += 1
	}

	return priority
}
