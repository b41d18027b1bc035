package model

import "github.com/google/uuid"

// ReportStatus is the outcome of processing one news item.
type ReportStatus string

const (
	ReportStatusOK       ReportStatus = "ok"
	ReportStatusDegraded ReportStatus = "degraded"
	ReportStatusFailed   ReportStatus = "failed"
)

// ParseFailureSummary is stored as summary when the leader answer could not be parsed.
const ParseFailureSummary = "Error: Worker returned an invalid format."

// TaskReport is the merged output of the coordinator for one news item.
type TaskReport struct {
	ID                   uuid.UUID    `json:"id"`
	Headline             string       `json:"headline"`
	Content              string       `json:"content"`
	Company              string       `json:"company,omitempty"`
	Summary              string       `json:"summary"`
	FinancialImpactTrend string       `json:"financial_impact_trend"`
	ContextReport        string       `json:"context_report,omitempty"`
	MarketBriefing       string       `json:"market_briefing,omitempty"`
	Status               ReportStatus `json:"status"`
	ParseFailed          bool         `json:"parse_failed,omitempty"`
	FailureStage         string       `json:"failure_stage,omitempty"`
	FailureReason        string       `json:"failure_reason,omitempty"`
}

// Failed reports whether the item ended in the failed state.
func (r *TaskReport) Failed() bool {
	return r.Status == ReportStatusFailed
}

// BatchSummary is the result of a batch run with its success counts.
type BatchSummary struct {
	Reports   []*TaskReport `json:"reports"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// Add appends a report and updates the counts.
func (b *BatchSummary) Add(report *TaskReport) {
	b.Reports = append(b.Reports, report)
	if report.Failed() {
		b.Failed++
	} else {
		b.Succeeded++
	}
}

// Narrative is the decision maker report with fixed sections.
type Narrative struct {
	Title            string   `json:"title"`
	SummaryParagraph string   `json:"summary_paragraph"`
	KeyInsight       string   `json:"key_insight"`
	KeyImplications  []string `json:"key_implications"`
}
