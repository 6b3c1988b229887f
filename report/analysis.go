package report

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/paperlens/cluster"
	"github.com/hazyhaar/paperlens/question"
)

// DocumentStat summarizes the extraction of one input paper.
type DocumentStat struct {
	Path       string   `json:"path" yaml:"path"`
	Format     string   `json:"format" yaml:"format"`
	Pages      int      `json:"pages" yaml:"pages"`
	TextPages  int      `json:"text_pages" yaml:"text_pages"`
	Watermarks []string `json:"watermarks,omitempty" yaml:"watermarks,omitempty"`
	Questions  int      `json:"questions" yaml:"questions"`
	NeedsOCR   bool     `json:"needs_ocr,omitempty" yaml:"needs_ocr,omitempty"`
}

// Analysis is the result of one pipeline run.
type Analysis struct {
	RunID         string               `json:"run_id" yaml:"run_id"`
	Documents     []DocumentStat       `json:"documents" yaml:"documents"`
	Questions     []question.Record    `json:"questions" yaml:"questions"`
	Assignment    cluster.Assignment   `json:"assignment" yaml:"assignment"`
	Clusters      []Summary            `json:"clusters" yaml:"clusters"`
	Topics        []string             `json:"topics" yaml:"topics"`
	Frequent      []Frequent           `json:"frequent" yaml:"frequent"`
	Difficulty    question.Difficulty  `json:"difficulty" yaml:"difficulty"`
	QuestionTypes []question.TypeCount `json:"question_types" yaml:"question_types"`
	ChartPath     string               `json:"chart_path,omitempty" yaml:"chart_path,omitempty"`
	ChartError    string               `json:"chart_error,omitempty" yaml:"chart_error,omitempty"`
	Empty         bool                 `json:"empty" yaml:"empty"`
	Warnings      []string             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Format renders the plain-text report.
func Format(a *Analysis) string {
	var sb strings.Builder
	sb.WriteString("Analysis Report:\n\n")

	if a.Empty {
		sb.WriteString("No questions found in the provided papers.\n")
		writeWarnings(&sb, a.Warnings)
		return sb.String()
	}

	sb.WriteString("Top Topics:\n")
	for _, t := range a.Topics {
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nFrequent Questions:\n")
	for _, f := range a.Frequent {
		if f.Count > 1 {
			fmt.Fprintf(&sb, "%s (%d times)\n", f.Question, f.Count)
		} else {
			sb.WriteString(f.Question)
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(&sb, "\nDifficulty: %s\n", a.Difficulty)
	sb.WriteString("\nQuestion Types:\n")
	for _, tc := range a.QuestionTypes {
		fmt.Fprintf(&sb, "- %s: %d\n", tc.Type, tc.Count)
	}
	sb.WriteByte('\n')
	switch {
	case a.ChartError != "":
		fmt.Fprintf(&sb, "Cluster Plot not saved: %s\n", a.ChartError)
	case a.ChartPath != "":
		fmt.Fprintf(&sb, "Cluster Plot saved at: %s\n", a.ChartPath)
	}
	writeWarnings(&sb, a.Warnings)
	return sb.String()
}

func writeWarnings(sb *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("\nWarnings:\n")
	for _, w := range warnings {
		fmt.Fprintf(sb, "- %s\n", w)
	}
}
