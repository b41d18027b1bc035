package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/siherrmann/chipnews/helper"
)

// VectorIndexType is the pgvector access method of the chunk embedding index.
type VectorIndexType string

const (
	VectorIndexHNSW    VectorIndexType = "hnsw"
	VectorIndexIVFFlat VectorIndexType = "ivfflat"
)

const embeddingIndexName = "idx_chunks_embedding"

// ParseVectorIndexType accepts "hnsw" and "ivfflat" in any case.
func ParseVectorIndexType(name string) (VectorIndexType, error) {
	switch VectorIndexType(strings.ToLower(strings.TrimSpace(name))) {
	case VectorIndexHNSW:
		return VectorIndexHNSW, nil
	case VectorIndexIVFFlat:
		return VectorIndexIVFFlat, nil
	default:
		return "", fmt.Errorf("unsupported index type %q, use hnsw or ivfflat", name)
	}
}

// VectorIndexOptions describe the embedding index of the chunks table.
// Zero values take the pgvector defaults of the chosen type.
type VectorIndexOptions struct {
	Type           VectorIndexType
	M              int
	EfConstruction int
	Lists          int
}

// DefaultVectorIndexOptions returns the index init_chunks creates.
func DefaultVectorIndexOptions() VectorIndexOptions {
	return VectorIndexOptions{Type: VectorIndexHNSW, M: 16, EfConstruction: 64}
}

// normalize fills defaults and checks the pgvector limits.
func (o VectorIndexOptions) normalize() (VectorIndexOptions, error) {
	switch o.Type {
	case VectorIndexHNSW:
		if o.M == 0 {
			o.M = 16
		}
		if o.EfConstruction == 0 {
			o.EfConstruction = 64
		}
		if o.M < 2 || o.M > 100 {
			return o, fmt.Errorf("hnsw m must be between 2 and 100, got %d", o.M)
		}
		if o.EfConstruction < 2*o.M || o.EfConstruction > 1000 {
			return o, fmt.Errorf("hnsw ef_construction must be between 2*m (%d) and 1000, got %d", 2*o.M, o.EfConstruction)
		}
		o.Lists = 0
	case VectorIndexIVFFlat:
		if o.Lists == 0 {
			o.Lists = 100
		}
		if o.Lists < 1 || o.Lists > 32768 {
			return o, fmt.Errorf("ivfflat lists must be between 1 and 32768, got %d", o.Lists)
		}
		o.M, o.EfConstruction = 0, 0
	default:
		_, err := ParseVectorIndexType(string(o.Type))
		return o, err
	}
	return o, nil
}

func (o VectorIndexOptions) statement() string {
	if o.Type == VectorIndexIVFFlat {
		return fmt.Sprintf(`CREATE INDEX %s ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`, embeddingIndexName, o.Lists)
	}
	return fmt.Sprintf(`CREATE INDEX %s ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`, embeddingIndexName, o.M, o.EfConstruction)
}

// ChangeIndexType rebuilds the chunk embedding index with the given options.
// Drop and create run in one transaction, so a failed build keeps the
// previous index. It returns the options after defaults were applied.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, options VectorIndexOptions) (VectorIndexOptions, error) {
	options, err := options.normalize()
	if err != nil {
		return options, helper.NewError("validate index options", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return options, helper.NewError("begin index change", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS `+embeddingIndexName+`;`); err != nil {
		return options, helper.NewError("drop index", err)
	}
	if _, err := tx.ExecContext(ctx, options.statement()); err != nil {
		return options, helper.NewError("create index", err)
	}
	if err := tx.Commit(); err != nil {
		return options, helper.NewError("commit index change", err)
	}

	h.db.Logger.Info(
		"Rebuilt chunk embedding index",
		slog.String("type", string(options.Type)),
		slog.Int("m", options.M),
		slog.Int("ef_construction", options.EfConstruction),
		slog.Int("lists", options.Lists),
	)

	return options, nil
}

var indexMethod = regexp.MustCompile(`(?i)USING\s+(\w+)`)

// VectorIndex returns the access method of the chunk embedding index, or an
// empty type when the index does not exist.
func (h *ChunksDBHandler) VectorIndex(ctx context.Context) (VectorIndexType, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var definition string
	err := h.db.Instance.QueryRowContext(ctx, `SELECT indexdef FROM pg_indexes WHERE indexname = $1;`, embeddingIndexName).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", helper.NewError("select index definition", err)
	}

	match := indexMethod.FindStringSubmatch(definition)
	if match == nil {
		return "", helper.NewError("parse index definition", fmt.Errorf("no access method in %q", definition))
	}
	return VectorIndexType(strings.ToLower(match[1])), nil
}
