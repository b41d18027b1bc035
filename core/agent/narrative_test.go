package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/siherrmann/chipnews/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReports() []*model.TaskReport {
	return []*model.TaskReport{
		{Headline: "Nvidia invests in Intel", Summary: "Nvidia takes a stake.", FinancialImpactTrend: "Positive.", Status: model.ReportStatusOK},
		{Headline: "Qualcomm", Status: model.ReportStatusFailed, FailureStage: "START"},
		{Headline: "AMD wins order", Summary: "AMD wins Oracle.", FinancialImpactTrend: "Revenue up.", Status: model.ReportStatusOK},
	}
}

func TestParseNarrative(t *testing.T) {
	t.Run("Reads all sections", func(t *testing.T) {
		answer := "### Summary Report of Financial News (2025-09-18)\n\n" +
			"### Summary Paragraph\nNvidia invests in Intel\nand AMD wins Oracle.\n\n" +
			"### Key Insight\nSeven days ago ties were loose. Today they deepen.\n\n" +
			"### Key Implications\n- **Nvidia** gains x86 access (graph)\n- Intel stock rises (web search)\n"

		n := ParseNarrative(answer, "2025-09-18", testReports())
		assert.Equal(t, "Summary Report of Financial News (2025-09-18)", n.Title)
		assert.Equal(t, "Nvidia invests in Intel and AMD wins Oracle.", n.SummaryParagraph)
		assert.Equal(t, "Seven days ago ties were loose. Today they deepen.", n.KeyInsight)
		assert.Equal(t, []string{"Nvidia gains x86 access (graph)", "Intel stock rises (web search)"}, n.KeyImplications)
	})

	t.Run("Missing sections fall back to the merged reports", func(t *testing.T) {
		n := ParseNarrative("Just some prose without headers.", "2025-09-18", testReports())
		assert.Equal(t, "Nvidia takes a stake. AMD wins Oracle.", n.SummaryParagraph)
		assert.Equal(t, "Nvidia takes a stake. AMD wins Oracle.", n.KeyInsight)
		assert.Equal(t, []string{"Positive.", "Revenue up."}, n.KeyImplications)
	})
}

func TestRenderMarkdown(t *testing.T) {
	n := &model.Narrative{
		Title:            NarrativeTitle("2025-09-18"),
		SummaryParagraph: "Summary.",
		KeyInsight:       "Insight.",
		KeyImplications:  []string{"One", "Two"},
	}

	expected := "### Summary Report of Financial News (2025-09-18)\n\n" +
		"### Summary Paragraph\nSummary.\n\n" +
		"### Key Insight\nInsight.\n\n" +
		"### Key Implications\n- One\n- Two\n"
	assert.Equal(t, expected, RenderMarkdown(n))

	t.Run("Rendered markdown parses back", func(t *testing.T) {
		parsed := ParseNarrative(RenderMarkdown(n), "2025-09-18", nil)
		assert.Equal(t, n, parsed)
	})
}

func TestNarrate(t *testing.T) {
	s := newTestSetup(t)
	c := s.coordinator(t, nil)

	n, err := c.Narrate(context.Background(), "2025-09-18", &model.BatchSummary{Reports: testReports()})
	require.NoError(t, err)
	assert.Equal(t, "Nvidia invests in Intel.", n.SummaryParagraph)
	assert.Equal(t, []string{"Intel gains a partner", "Nvidia gains x86 access"}, n.KeyImplications)

	require.Len(t, s.leader.prompts, 1)
	assert.Contains(t, s.leader.prompts[0], "Today is 2025-09-18.")
	assert.NotContains(t, s.leader.prompts[0], "Qualcomm", "Expected failed reports to be left out")
}

func TestWriteJSON(t *testing.T) {
	t.Run("Writes an indented array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, testReports()))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 3)
		assert.Equal(t, "failed", decoded[1]["status"])
		assert.Equal(t, "START", decoded[1]["failure_stage"])
		assert.Contains(t, buf.String(), "\n  {")
	})

	t.Run("Nil reports give an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, nil))
		assert.Equal(t, "[]\n", buf.String())
	})
}
