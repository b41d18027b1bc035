package filter

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/siherrmann/chipnews/model"
)

// Mode sets how aggressively consumer content is removed.
type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeModerate Mode = "moderate"
	ModeLenient  Mode = "lenient"
)

// ParseMode returns the mode with the given name.
func ParseMode(name string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(name))); mode {
	case ModeStrict, ModeModerate, ModeLenient:
		return mode, nil
	case "":
		return ModeModerate, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", name)
	}
}

// Threshold is the minimum confidence an article needs to be kept.
func (m Mode) Threshold() float64 {
	switch m {
	case ModeStrict:
		return 0.7
	case ModeLenient:
		return 0.3
	default:
		return 0.5
	}
}

var filterOutKeywords = []string{
	// consumer and shopping
	"laptop", "gaming", "specs", "deal", "discount", "sale", "shopping",
	"consumer", "product review", "benchmark", "price", "buy", "purchase",
	"save", "offer", "promotion", "black friday", "cyber monday",
	// gaming
	"fps", "frame rate", "performance test", "game", "gamer", "esports",
	"handheld", "steam deck", "rog ally", "gaming pc", "gaming laptop",
	// consumer hardware
	"rtx 5080", "rtx 5060", "geforce", "graphics card", "gpu review",
	"cpu review", "motherboard", "ram", "storage", "ssd", "cooling",
	// retailers
	"slickdeals", "amazon", "walmart", "best buy", "newegg", "microcenter",
	// product specifications
	"specifications", "tech specs", "unboxing", "hands-on", "first look",
	"leaked", "rumor", "release date", "launch", "announcement",
}

var keepKeywords = []string{
	"investment", "invest", "funding", "revenue", "earnings", "profit",
	"loss", "market cap", "stock", "share", "dividend", "acquisition",
	"merger", "partnership", "strategic", "business", "enterprise",
	"quarterly", "annual", "financial", "fiscal", "guidance", "outlook",
	"forecast", "analyst", "wall street", "nasdaq", "trading",
	"ceo", "executive", "leadership", "board", "shareholder", "ipo",
	"public offering", "private equity", "venture capital", "valuation",
	"industry", "sector", "competition", "competitor", "market share",
	"data center", "datacenter", "cloud", "corporate",
	"artificial intelligence", "machine learning", "ai chip", "server",
	"infrastructure", "computing", "semiconductor", "technology",
}

var strongBusinessKeywords = []string{
	"billion", "million", "investment", "partnership", "deal",
	"revenue", "earnings", "acquisition", "merger",
}

var consumerSources = []string{
	"slickdeals", "techradar", "pcgamer", "tomshardware", "anandtech",
	"engadget", "the verge", "ars technica", "wccftech", "techpowerup",
}

var (
	dealPattern   = regexp.MustCompile(`(?i)\$\d+.*off|save.*\$|deal.*\$|\d+% off|discount`)
	gamingPattern = regexp.MustCompile(`(?i)\d+fps|\d+ fps|frame.*rate|benchmark|performance.*test`)
)

// Result is the evaluation of a single article.
type Result struct {
	Relevant        bool     `json:"is_relevant"`
	Confidence      float64  `json:"confidence_score"`
	MatchedKeywords []string `json:"matched_keywords"`
	Reasons         []string `json:"filter_reasons"`
}

// Stats counts the articles kept for one company.
type Stats struct {
	Original    int     `json:"original_count"`
	Kept        int     `json:"filtered_count"`
	Removed     int     `json:"removed_count"`
	PercentKept float64 `json:"percentage_kept"`
}

// NewsFilter scores articles for business relevance.
type NewsFilter struct {
	mode      Mode
	filterOut []string
	keep      []string
	logger    *slog.Logger
}

// New creates a filter for the given mode.
// Strict mode also removes reviews and comparisons, lenient mode
// tolerates launches and announcements.
func New(mode Mode, logger *slog.Logger) *NewsFilter {
	if logger == nil {
		logger = slog.Default()
	}

	filterOut := slices.Clone(filterOutKeywords)
	switch mode {
	case ModeStrict:
		filterOut = append(filterOut, "review", "test", "comparison", "vs")
	case ModeLenient:
		filterOut = slices.DeleteFunc(filterOut, func(k string) bool {
			return k == "announcement" || k == "launch" || k == "technology"
		})
	default:
		mode = ModeModerate
	}

	return &NewsFilter{
		mode:      mode,
		filterOut: filterOut,
		keep:      slices.Clone(keepKeywords),
		logger:    logger,
	}
}

// Mode returns the filtering mode.
func (f *NewsFilter) Mode() Mode {
	return f.mode
}

// AddKeywords extends the filter-out and keep lists.
func (f *NewsFilter) AddKeywords(filterOut []string, keep []string) {
	f.filterOut = append(f.filterOut, filterOut...)
	f.keep = append(f.keep, keep...)
}

// RemoveKeywords drops keywords from the filter-out and keep lists.
func (f *NewsFilter) RemoveKeywords(filterOut []string, keep []string) {
	f.filterOut = slices.DeleteFunc(f.filterOut, func(k string) bool { return slices.Contains(filterOut, k) })
	f.keep = slices.DeleteFunc(f.keep, func(k string) bool { return slices.Contains(keep, k) })
}

func articleText(article *model.Article) string {
	return strings.ToLower(article.Headline + " " + article.Content)
}

func matches(text string, keywords []string) []string {
	found := []string{}
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}

func isConsumerSource(source string) bool {
	source = strings.ToLower(source)
	for _, cs := range consumerSources {
		if strings.Contains(source, cs) {
			return true
		}
	}
	return false
}

// Confidence scores the article between 0 and 1. Business keywords raise
// the score, consumer keywords, consumer sources and deal or gaming
// patterns lower it.
func (f *NewsFilter) Confidence(article *model.Article) float64 {
	return f.confidence(article, articleText(article))
}

func (f *NewsFilter) confidence(article *model.Article, text string) float64 {
	score := 0.5
	score += float64(len(matches(text, f.keep)))*0.05 + float64(len(matches(text, strongBusinessKeywords)))*0.15
	score -= float64(len(matches(text, f.filterOut))) * 0.1

	if isConsumerSource(article.Source) {
		score -= 0.2
	}
	if dealPattern.MatchString(text) {
		score -= 0.3
	}
	if gamingPattern.MatchString(text) {
		score -= 0.3
	}

	return math.Max(0, math.Min(1, score))
}

// Evaluate decides whether the article is business relevant and explains why.
func (f *NewsFilter) Evaluate(article *model.Article) Result {
	text := articleText(article)
	confidence := f.confidence(article, text)

	positive := matches(text, f.keep)
	negative := matches(text, f.filterOut)
	businessContext := len(matches(text, strongBusinessKeywords)) > 0

	reasons := []string{}
	if !businessContext {
		for _, keyword := range negative {
			reasons = append(reasons, fmt.Sprintf("Contains consumer keyword: '%s'", keyword))
		}
		if isConsumerSource(article.Source) {
			reasons = append(reasons, fmt.Sprintf("Consumer tech source: '%s'", strings.ToLower(article.Source)))
		}
	}
	if dealPattern.MatchString(text) {
		reasons = append(reasons, "Contains deal/discount patterns")
	}
	if gamingPattern.MatchString(text) {
		reasons = append(reasons, "Contains gaming performance patterns")
	}

	return Result{
		Relevant:        confidence >= f.mode.Threshold(),
		Confidence:      confidence,
		MatchedKeywords: append(positive, negative...),
		Reasons:         reasons,
	}
}

// FilterArticles keeps the relevant articles in input order and counts
// the outcome per company.
func (f *NewsFilter) FilterArticles(articles []*model.Article) ([]*model.Article, map[string]Stats) {
	kept := []*model.Article{}
	stats := map[string]Stats{}

	for _, article := range articles {
		s := stats[article.Company]
		s.Original++
		if f.Evaluate(article).Relevant {
			s.Kept++
			kept = append(kept, article)
		}
		stats[article.Company] = s
	}

	for company, s := range stats {
		s.Removed = s.Original - s.Kept
		if s.Original > 0 {
			s.PercentKept = math.Round(float64(s.Kept)/float64(s.Original)*1000) / 10
		}
		stats[company] = s
		f.logger.Info("Filtered articles",
			slog.String("company", company),
			slog.Int("original", s.Original),
			slog.Int("kept", s.Kept),
			slog.Float64("percent_kept", s.PercentKept),
		)
	}

	return kept, stats
}

// Totals sums the per company statistics.
func Totals(stats map[string]Stats) Stats {
	var total Stats
	for _, s := range stats {
		total.Original += s.Original
		total.Kept += s.Kept
		total.Removed += s.Removed
	}
	if total.Original > 0 {
		total.PercentKept = math.Round(float64(total.Kept)/float64(total.Original)*1000) / 10
	}
	return total
}
