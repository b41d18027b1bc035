package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	sectionSummary      = "summary paragraph"
	sectionInsight      = "key insight"
	sectionImplications = "key implications"
)

// NarrativeTitle is the title of the report of a day.
func NarrativeTitle(date string) string {
	return fmt.Sprintf("Summary Report of Financial News (%s)", date)
}

// Narrate asks the leader for a decision maker report over the batch.
func (c *Coordinator) Narrate(ctx context.Context, date string, batch *model.BatchSummary) (*model.Narrative, error) {
	answer, err := c.caps.Leader.Generate(ctx, narrativePrompt(date, batch.Reports))
	if err != nil {
		return nil, helper.NewError("narrate", err)
	}
	return ParseNarrative(answer, date, batch.Reports), nil
}

// ParseNarrative reads the sections of a markdown report. Sections the
// answer lacks are filled from the merged reports.
func ParseNarrative(markdown string, date string, reports []*model.TaskReport) *model.Narrative {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	narrative := &model.Narrative{Title: NarrativeTitle(date)}
	var paragraphs = map[string][]string{}
	section := ""

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			heading := strings.ToLower(nodeText(n, source))
			switch {
			case strings.Contains(heading, sectionSummary):
				section = sectionSummary
			case strings.Contains(heading, sectionInsight):
				section = sectionInsight
			case strings.Contains(heading, sectionImplications):
				section = sectionImplications
			default:
				section = ""
			}
		case *ast.List:
			for li := n.FirstChild(); li != nil; li = li.NextSibling() {
				if itemText := nodeText(li, source); itemText != "" {
					if section == sectionImplications {
						narrative.KeyImplications = append(narrative.KeyImplications, itemText)
					} else if section != "" {
						paragraphs[section] = append(paragraphs[section], itemText)
					}
				}
			}
		default:
			if section == "" {
				continue
			}
			if paragraph := nodeText(n, source); paragraph != "" {
				if section == sectionImplications {
					narrative.KeyImplications = append(narrative.KeyImplications, paragraph)
				} else {
					paragraphs[section] = append(paragraphs[section], paragraph)
				}
			}
		}
	}

	narrative.SummaryParagraph = strings.Join(paragraphs[sectionSummary], "\n\n")
	narrative.KeyInsight = strings.Join(paragraphs[sectionInsight], "\n\n")

	merged := mergedSummaries(reports)
	if narrative.SummaryParagraph == "" {
		narrative.SummaryParagraph = strings.Join(merged, " ")
	}
	if narrative.KeyInsight == "" {
		narrative.KeyInsight = strings.Join(merged, " ")
	}
	if len(narrative.KeyImplications) == 0 {
		for _, report := range reports {
			if !report.Failed() && report.FinancialImpactTrend != "" {
				narrative.KeyImplications = append(narrative.KeyImplications, report.FinancialImpactTrend)
			}
		}
	}

	return narrative
}

func mergedSummaries(reports []*model.TaskReport) []string {
	merged := []string{}
	for _, report := range reports {
		if report.Failed() || report.ParseFailed || report.Summary == "" {
			continue
		}
		merged = append(merged, report.Summary)
	}
	return merged
}

// nodeText returns the plain text of a node with soft line breaks as spaces.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
			return
		case *ast.String:
			b.Write(t.Value)
			return
		}
		if n.Type() == ast.TypeBlock && n.ChildCount() == 0 {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				b.Write(line.Value(source))
			}
			return
		}
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if b.Len() > 0 && child.Type() == ast.TypeBlock && child.PreviousSibling() != nil {
				b.WriteByte(' ')
			}
			walk(child)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(b.String()), " ")
}

// RenderMarkdown renders a narrative with its fixed headers.
func RenderMarkdown(n *model.Narrative) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", n.Title)
	fmt.Fprintf(&b, "### Summary Paragraph\n%s\n\n", n.SummaryParagraph)
	fmt.Fprintf(&b, "### Key Insight\n%s\n\n", n.KeyInsight)
	b.WriteString("### Key Implications\n")
	for _, implication := range n.KeyImplications {
		fmt.Fprintf(&b, "- %s\n", implication)
	}
	return b.String()
}
