package model

// IndexConfig configures chunking and retrieval of the chunk index.
type IndexConfig struct {
	ChunkSize    int      `json:"chunk_size"`
	ChunkOverlap int      `json:"chunk_overlap"`
	Separators   []string `json:"separators"`
	TopK         int      `json:"top_k"`
}

// DefaultIndexConfig returns the chunking defaults for news articles.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		ChunkSize:    500,
		ChunkOverlap: 50,
		Separators:   []string{"\n\n", "\n", ".", " "},
		TopK:         3,
	}
}

// Focus biases a search towards a kind of content.
type Focus string

const (
	FocusFinancial Focus = "financial"
	FocusTechnical Focus = "technical"
	FocusBusiness  Focus = "business"
)

// MinRelevance raises the given relevance floor according to the focus.
func (f Focus) MinRelevance(minRelevance float64) float64 {
	switch f {
	case FocusFinancial:
		return max(minRelevance, 1.0)
	case FocusTechnical:
		return max(minRelevance, 0.7)
	default:
		return minRelevance
	}
}
