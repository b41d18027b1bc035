package agent

import (
	"fmt"
	"strings"

	"github.com/siherrmann/chipnews/model"
)

// Role selects the task a worker performs.
type Role string

const (
	RoleSummary  Role = "summary"
	RoleAnalysis Role = "analysis"
)

func (r Role) instructions() string {
	switch r {
	case RoleAnalysis:
		return `You are a financial analyst. Provide a comprehensive yet accessible analysis of the financial impact of the news and the resulting trends.
- Identify all key financial implications, both positive and negative.
- Consider short-term and long-term effects on the company's market position and stock value.
- Explain how the news, viewed alongside the graph context, the market briefing and other events of the day, affects financial trends and market sentiment.
- Write in clear, professional language usable for strategic decision making.`
	default:
		return `You are a concise news summarizer specialized in financial impact.
Integrate the main article with the historical graph context, the market briefing and the related same-day news into a holistic overview.`
	}
}

func richQueryPrompt(headline string, guide string) string {
	return fmt.Sprintf(`You are a query engineer. Given the headline and an initial guide for a worker, produce a single concise, high-signal search query suitable for retrieving relevant news chunks from a vector index. Make it 1-2 short lines, include company, ticker and entity names, and important numeric or temporal keywords if present.
Return only JSON: {"query": "<your query>"}
Headline: """%s"""
Initial guide: """%s"""
`, headline, guide)
}

func workerPrompt(role Role, task WorkerTask, query string, chunks string) string {
	return fmt.Sprintf(`%s

Given:
- Headline: %s
- Content: %s
- Initial guide: %s
- Retrieval query used: %s

Produce:
1) A short structured JSON object with keys:
   - "topline": one sentence emphasizing financial impact (revenue, costs, guidance, stock moves)
   - "entities": list of {"name": ..., "role": ..., "evidence": ...}
   - "numbers": list of {"value": ..., "context": ..., "source_chunk": i}
   - "confidence": "low", "medium" or "high"
   - "recommendation": one sentence suggested follow-up
2) Then a short bullet summary (3-6 bullets) focusing on trend and financial implications.

Return valid JSON for the structured object, followed by the bullets on new lines.
CHUNKS:
%s
`, role.instructions(), task.Headline, task.Content, task.Guide, query, chunks)
}

func workerGuide(primary string, contextReport string, marketBriefing string) string {
	return fmt.Sprintf(`Primary company: %s
Use the historical graph context (last 7 days), the market context briefing and the same-day news chunks.

%s

%s`, primary, contextReport, marketBriefing)
}

func mergePrompt(article *model.Article, summary string, analysis string) string {
	return fmt.Sprintf(`You are the leader of a team of news analysts. Combine the summary and the analysis of the news article into a single JSON object.

News headline: "%s"
News content: "%s"

Summary:
%s

Analysis:
%s

Your response MUST be a single, compact line of valid JSON without any other text or markdown. Example:
{"summary": "NVIDIA announced a new AI chip...", "financial_impact_trend": "The new chip is expected to strengthen NVIDIA's data center revenue..."}
`, article.Headline, article.Content, summary, analysis)
}

func narrativePrompt(date string, reports []*model.TaskReport) string {
	var items strings.Builder
	for i, report := range reports {
		if report.Failed() {
			continue
		}
		fmt.Fprintf(&items, "%d. %s\nSummary: %s\nFinancial impact: %s\n", i+1, report.Headline, report.Summary, report.FinancialImpactTrend)
		if report.ContextReport != "" {
			fmt.Fprintf(&items, "Graph context:\n%s\n", report.ContextReport)
		}
		if report.MarketBriefing != "" {
			fmt.Fprintf(&items, "Market context:\n%s\n", report.MarketBriefing)
		}
		items.WriteString("\n")
	}

	return fmt.Sprintf(`You are writing a report for a decision maker. Today is %s.
Compose a clear narrative report in plain language, not JSON, from the processed news below.

Structure the report exactly as follows:
### Summary Report of Financial News (%s)

### Summary Paragraph
One paragraph with the main events, the financial implications, the key relationships between entities and relevant market or competitor events.

### Key Insight
One paragraph of 4-5 sentences connecting the historical graph data of the last 7 days, what happens today and the likely outlook.

### Key Implications
A bullet list of entity relationships (mark them as from the graph), risks and opportunities, and market or competitor events (mark them as from the web search).

News:
%s`, date, date, items.String())
}
