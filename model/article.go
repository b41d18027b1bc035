package model

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/siherrmann/chipnews/helper"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Article is a single scraped news article about a chipmaker.
type Article struct {
	Headline  string `json:"headline" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Source    string `json:"source,omitempty"`
	URL       string `json:"url,omitempty" validate:"omitempty,url"`
	Timestamp string `json:"timestamp" validate:"required"`
	Company   string `json:"company,omitempty"`
}

// Validate checks the required fields of the article.
func (a *Article) Validate() error {
	return validate.Struct(a)
}

// Normalize cleans the free text fields in place.
func (a *Article) Normalize() {
	a.Headline = strings.TrimSpace(a.Headline)
	a.Content = helper.CleanText(a.Content)
	a.Source = strings.TrimSpace(a.Source)
	a.Company = strings.TrimSpace(a.Company)
}

// Document renders the article as the text that gets chunked and indexed.
func (a *Article) Document() string {
	return fmt.Sprintf(
		"Category: %s\nHeadline: %s\nSource: %s\nContent: %s\nTimestamp: %s",
		a.Company, a.Headline, a.Source, a.Content, a.Timestamp,
	)
}

// Metadata returns the article fields attached to every chunk of the article.
func (a *Article) Metadata() Metadata {
	return Metadata{
		"company":   a.Company,
		"headline":  a.Headline,
		"source":    a.Source,
		"url":       a.URL,
		"timestamp": a.Timestamp,
	}
}

// LoadArticles reads a dataset mapping company name to a list of articles.
// Entries missing required fields are skipped with a warning.
// Companies are returned in alphabetical order, articles in file order.
func LoadArticles(r io.Reader, logger *slog.Logger) ([]*Article, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var raw map[string][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, helper.NewError("decode articles", fmt.Errorf("%w: %v", ErrIngestion, err))
	}

	companies := make([]string, 0, len(raw))
	for company := range raw {
		companies = append(companies, company)
	}
	sort.Strings(companies)

	var articles []*Article
	for _, company := range companies {
		for i, entry := range raw[company] {
			article := &Article{}
			if err := json.Unmarshal(entry, article); err != nil {
				logger.Warn("Skipping malformed article", slog.String("company", company), slog.Int("index", i), slog.String("error", err.Error()))
				continue
			}
			if article.Company == "" {
				article.Company = company
			}
			article.Normalize()
			if err := article.Validate(); err != nil {
				logger.Warn("Skipping invalid article", slog.String("company", company), slog.Int("index", i), slog.String("error", err.Error()))
				continue
			}
			articles = append(articles, article)
		}
	}

	return articles, nil
}

// GroupByCompany groups articles by their company keeping the input order.
func GroupByCompany(articles []*Article) map[string][]*Article {
	grouped := make(map[string][]*Article)
	for _, a := range articles {
		grouped[a.Company] = append(grouped[a.Company], a)
	}
	return grouped
}
