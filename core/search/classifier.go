package search

import (
	"net/url"
	"strings"

	"github.com/siherrmann/chipnews/model"
)

type sourceTier struct {
	tier        model.SourceTier
	description string
	domains     []string
	weight      float64
	reliability int
}

// sourceTiers lists the trusted domains from most to least credible.
var sourceTiers = []sourceTier{
	{
		tier:        model.SourceTierPremium,
		description: "Premium financial/business source with high credibility",
		domains:     []string{"bloomberg.com", "reuters.com", "wsj.com", "ft.com", "cnbc.com", "marketwatch.com", "finance.yahoo.com"},
		weight:      1.0,
		reliability: 95,
	},
	{
		tier:        model.SourceTierEstablished,
		description: "Established tech/business publication",
		domains:     []string{"techcrunch.com", "theverge.com", "arstechnica.com", "seekingalpha.com", "businessinsider.com", "forbes.com", "venturebeat.com", "wired.com"},
		weight:      0.8,
		reliability: 85,
	},
	{
		tier:        model.SourceTierSpecialized,
		description: "Industry-specialized publication",
		domains:     []string{"anandtech.com", "tomshardware.com", "electronicsweekly.com", "eetimes.com", "semiconductor-digest.com", "techpowerup.com"},
		weight:      0.7,
		reliability: 80,
	},
}

const unknownSourceDescription = "Unverified or less established source"

var businessDomains = []string{"bloomberg", "reuters", "wsj", "cnbc", "marketwatch", "seekingalpha", "businessinsider", "forbes"}

type contentRule struct {
	contentType model.ContentType
	reasoning   string
	indicators  []string
}

var contentRules = []contentRule{
	{model.ContentTypeFinancialNews, "Contains financial/earnings information", []string{"earnings", "revenue", "quarterly", "financial results", "stock price", "valuation"}},
	{model.ContentTypeBusinessAnalysis, "Business strategy or competitive analysis", []string{"partnership", "acquisition", "market share", "competition", "strategy"}},
	{model.ContentTypeTechBusiness, "Technology business or enterprise focus", []string{"data center", "enterprise", "artificial intelligence", "semiconductor"}},
	{model.ContentTypeConsumerContent, "Consumer-focused or product review content", []string{"gaming", "laptop deal", "review", "fps", "benchmark"}},
}

const generalNewsReasoning = "General news or announcement"

type significanceRule struct {
	significance model.Significance
	reasoning    string
	indicators   []string
}

var significanceRules = []significanceRule{
	{model.SignificanceHighImpact, "Major business event with significant financial implications", []string{"billion", "merger", "acquisition", "bankruptcy", "ipo", "guidance cut", "guidance raise"}},
	{model.SignificanceModerateImpact, "Notable business development worth monitoring", []string{"million", "partnership", "expansion", "layoffs", "restructuring", "product launch"}},
	{model.SignificanceMinorUpdate, "Regular business update or announcement", []string{"update", "announcement", "conference", "interview"}},
}

const routineNewsReasoning = "Standard news item without clear business impact indicators"

func host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// ClassifySource returns the tier and description of the URL's domain.
// Domains match by substring of the host.
func ClassifySource(rawURL string) (model.SourceTier, string) {
	domain := host(rawURL)
	if domain == "" {
		return model.SourceTierUnknown, unknownSourceDescription
	}
	for _, tier := range sourceTiers {
		for _, trusted := range tier.domains {
			if strings.Contains(domain, trusted) {
				return tier.tier, tier.description
			}
		}
	}
	return model.SourceTierUnknown, unknownSourceDescription
}

// SourceReliability returns the ranking weight and reliability score of a tier.
// Unknown sources have neither.
func SourceReliability(tier model.SourceTier) (float64, int) {
	for _, t := range sourceTiers {
		if t.tier == tier {
			return t.weight, t.reliability
		}
	}
	return 0, 0
}

// IsBusinessSource reports whether the URL belongs to a business or financial outlet.
func IsBusinessSource(rawURL string) bool {
	domain := host(rawURL)
	return domain != "" && containsAny(domain, businessDomains)
}

// ClassifyContent returns the first content type whose indicators appear in
// the title or snippet, and the reasoning for it.
func ClassifyContent(title string, snippet string) (model.ContentType, string) {
	text := strings.ToLower(title + " " + snippet)
	for _, rule := range contentRules {
		if containsAny(text, rule.indicators) {
			return rule.contentType, rule.reasoning
		}
	}
	return model.ContentTypeGeneralNews, generalNewsReasoning
}

// AssessSignificance returns the highest impact level whose indicators appear
// in the title or snippet, its reasoning, and the indicators found at that level.
func AssessSignificance(title string, snippet string) (model.Significance, string, []string) {
	text := strings.ToLower(title + " " + snippet)
	for _, rule := range significanceRules {
		if found := findAll(text, rule.indicators); len(found) > 0 {
			return rule.significance, rule.reasoning, found
		}
	}
	return model.SignificanceRoutineNews, routineNewsReasoning, []string{}
}

// Opinion summarises why a classified result is worth reading.
func Opinion(tier model.SourceTier, sourceDescription string, contentType model.ContentType, contentReasoning string, significance model.Significance, significanceReasoning string) string {
	var parts []string
	if tier == model.SourceTierPremium || tier == model.SourceTierEstablished {
		parts = append(parts, "From "+strings.ToLower(sourceDescription))
	}
	if contentType == model.ContentTypeFinancialNews || contentType == model.ContentTypeBusinessAnalysis {
		parts = append(parts, strings.ToLower(contentReasoning))
	}
	if significance == model.SignificanceHighImpact || significance == model.SignificanceModerateImpact {
		parts = append(parts, strings.ToLower(significanceReasoning))
	}
	if len(parts) == 0 {
		return "Standard news item"
	}
	return strings.Join(parts, "; ")
}

// Classify enriches a raw result. The expanded and original queries are
// recorded in the result metadata.
func Classify(raw model.RawResult, originalQuery string, expandedQuery string) model.SearchResult {
	tier, sourceDescription := ClassifySource(raw.Href)
	contentType, contentReasoning := ClassifyContent(raw.Title, raw.Body)
	significance, significanceReasoning, indicators := AssessSignificance(raw.Title, raw.Body)

	return model.SearchResult{
		Title:          raw.Title,
		URL:            raw.Href,
		Snippet:        raw.Body,
		SourceTier:     tier,
		ContentType:    contentType,
		Significance:   significance,
		OpinionSummary: Opinion(tier, sourceDescription, contentType, contentReasoning, significance, significanceReasoning),
		Metadata: model.SearchMetadata{
			ExpandedQuery:         expandedQuery,
			OriginalQuery:         originalQuery,
			SourceDescription:     sourceDescription,
			ContentReasoning:      contentReasoning,
			SignificanceReasoning: significanceReasoning,
			KeyIndicators:         indicators,
			IsBusinessSource:      IsBusinessSource(raw.Href),
		},
	}
}
