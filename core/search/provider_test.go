package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siherrmann/chipnews/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResultPage = `<html><body>
<div class="result results_links">
	<h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.reuters.com%2Fnvidia&amp;rut=abc">Nvidia earnings</a></h2>
	<a class="result__snippet" href="#">Nvidia reported record revenue.</a>
</div>
<div class="result results_links">
	<h2 class="result__title"><a class="result__a" href="https://techcrunch.com/amd">AMD launch</a></h2>
	<a class="result__snippet" href="#">AMD launches MI350.</a>
</div>
<div class="result results_links">
	<h2 class="result__title"><a class="result__a" href="https://example.org/third">Third</a></h2>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	t.Run("Parses results and resolves redirects", func(t *testing.T) {
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			_, _ = w.Write([]byte(testResultPage))
		}))
		defer server.Close()

		provider := NewDuckDuckGo(server.Client(), server.URL+"/html/")
		results, err := provider.Search(context.Background(), "nvidia earnings", 2)
		require.NoError(t, err, "Expected Search to not return an error")
		assert.Equal(t, "nvidia earnings", gotQuery)
		require.Len(t, results, 2, "Expected results to be limited to max")
		assert.Equal(t, model.RawResult{
			Title: "Nvidia earnings",
			Href:  "https://www.reuters.com/nvidia",
			Body:  "Nvidia reported record revenue.",
		}, results[0])
		assert.Equal(t, "https://techcrunch.com/amd", results[1].Href)
	})

	t.Run("Non OK status is a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		provider := NewDuckDuckGo(server.Client(), server.URL)
		_, err := provider.Search(context.Background(), "nvidia", 5)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrSearchProvider), "Expected ErrSearchProvider, got %v", err)
	})
}
