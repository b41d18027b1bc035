package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/siherrmann/chipnews/helper"
)

const parseFailureNote = "could not parse structured JSON; see raw output"

// WorkerTask is the input of a worker.
type WorkerTask struct {
	Headline string
	Content  string
	Guide    string
}

// WorkerResult is the output of a worker.
type WorkerResult struct {
	Role       Role
	RichQuery  string
	Chunks     string
	Structured map[string]any
	Bullets    string
	Raw        string
	Tier       Tier
}

// Text renders the result for the leader: the topline followed by the bullets.
func (r *WorkerResult) Text() string {
	if r.Tier != TierOk {
		return strings.TrimSpace(r.Raw)
	}
	parsed := Parsed{Data: r.Structured}
	parts := []string{}
	if topline := parsed.String("topline", ""); topline != "" {
		parts = append(parts, topline)
	}
	if recommendation := parsed.String("recommendation", ""); recommendation != "" {
		parts = append(parts, "Recommendation: "+recommendation)
	}
	if r.Bullets != "" {
		parts = append(parts, r.Bullets)
	}
	if len(parts) == 0 {
		return strings.TrimSpace(r.Raw)
	}
	return strings.Join(parts, "\n")
}

// Worker generates a retrieval query, fetches same-day chunks and asks the
// model for a structured answer in its role.
type Worker struct {
	role      Role
	generator TextGeneration
	retriever Retriever
	k         int
	logger    *slog.Logger
}

// NewWorker creates a worker. k is the number of chunks retrieved.
func NewWorker(role Role, generator TextGeneration, retriever Retriever, k int, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if k <= 0 {
		k = 3
	}
	return &Worker{role: role, generator: generator, retriever: retriever, k: k, logger: logger}
}

// Run performs the worker task.
func (w *Worker) Run(ctx context.Context, task WorkerTask) (*WorkerResult, error) {
	query, err := w.richQuery(ctx, task)
	if err != nil {
		return nil, helper.NewError(string(w.role)+" worker query", err)
	}

	chunks, err := w.retriever.Retrieve(ctx, query, w.k)
	if err != nil {
		return nil, helper.NewError(string(w.role)+" worker retrieve", err)
	}

	raw, err := w.generator.Generate(ctx, workerPrompt(w.role, task, query, chunks))
	if err != nil {
		return nil, helper.NewError(string(w.role)+" worker generate", err)
	}

	result := &WorkerResult{
		Role:      w.role,
		RichQuery: query,
		Chunks:    chunks,
		Raw:       raw,
	}

	parsed := ParseStructuredResponse(raw)
	result.Tier = parsed.Tier
	if parsed.Ok() {
		result.Structured = parsed.Data
		result.Bullets = parsed.Rest
	} else {
		w.logger.Warn("Worker answer has no structured part", slog.String("role", string(w.role)), slog.String("reason", parsed.Reason))
		result.Structured = map[string]any{"note": parseFailureNote}
		result.Bullets = strings.TrimSpace(raw)
	}

	return result, nil
}

func (w *Worker) richQuery(ctx context.Context, task WorkerTask) (string, error) {
	raw, err := w.generator.Generate(ctx, richQueryPrompt(task.Headline, task.Guide))
	if err != nil {
		return "", err
	}

	parsed := ParseStructuredResponse(raw)
	if parsed.Ok() {
		if query := parsed.String("query", ""); query != "" {
			return query, nil
		}
	}

	query := strings.Trim(strings.TrimSpace(raw), `"`)
	if query == "" {
		query = task.Headline
	}
	return query, nil
}
