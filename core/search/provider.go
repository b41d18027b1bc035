package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// DuckDuckGoURL is the html endpoint of DuckDuckGo.
const DuckDuckGoURL = "https://html.duckduckgo.com/html/"

// Provider returns raw web search hits for a query.
type Provider interface {
	Search(ctx context.Context, query string, max int) ([]model.RawResult, error)
}

// DuckDuckGo scrapes the html result page of DuckDuckGo.
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
}

// NewDuckDuckGo creates a provider. A nil client gets a 20 second timeout,
// an empty baseURL defaults to DuckDuckGoURL.
func NewDuckDuckGo(client *http.Client, baseURL string) *DuckDuckGo {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = DuckDuckGoURL
	}
	return &DuckDuckGo{client: client, baseURL: baseURL}
}

// Search fetches one result page and returns at most max hits.
func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]model.RawResult, error) {
	doc, err := d.fetchDocument(ctx, query)
	if err != nil {
		return nil, helper.NewError("duckduckgo search", fmt.Errorf("%w: %v", model.ErrSearchProvider, err))
	}

	results := []model.RawResult{}
	doc.Find("div.result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if max > 0 && len(results) >= max {
			return false
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		results = append(results, model.RawResult{
			Title: strings.TrimSpace(link.Text()),
			Href:  resolveRedirect(href),
			Body:  strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return true
	})

	return results, nil
}

func (d *DuckDuckGo) fetchDocument(ctx context.Context, query string) (*goquery.Document, error) {
	pageURL := d.baseURL + "?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; chipnews/1.0)")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// resolveRedirect extracts the target of a DuckDuckGo redirect link.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
