package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/paperlens/docpipe"
	"github.com/hazyhaar/paperlens/question"
)

var extractFlags struct {
	questions bool
	pages     bool
}

var extractCmd = &cobra.Command{
	Use:   "extract <paper>",
	Short: "Print the clean text or the questions of one paper",
	Long: `Extract one paper with running headers, footers and watermark stamps
removed. With --questions, print its numbered sub-questions instead.

Examples:
  paperlens extract se-2024.pdf
  paperlens extract se-2024.pdf --questions
  paperlens extract se-2024.docx -o json --pages`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, logger, err := loadConfig()
		if err != nil {
			return err
		}
		pipe := docpipe.New(m.Get().Docpipe(logger))
		doc, err := pipe.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, line := range doc.Watermarks {
			logger.Debug("watermark removed", "path", doc.Path, "line", line)
		}
		if doc.Quality.NeedsOCR() {
			warnf(cmd.ErrOrStderr(), "%s has little extractable text, it may need OCR", doc.Path)
		}

		out := cmd.OutOrStdout()
		if extractFlags.questions {
			recs := question.SegmentSource(doc.CleanText, doc.Path)
			if recs == nil {
				recs = []question.Record{}
			}
			return writeOutput(out, outputFormat, recs, func(w io.Writer) error {
				_, err := io.WriteString(w, question.Format(recs))
				return err
			})
		}
		if !extractFlags.pages {
			doc.Pages = nil
		}
		return writeOutput(out, outputFormat, doc, func(w io.Writer) error {
			_, err := io.WriteString(w, doc.CleanText+"\n")
			return err
		})
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractFlags.questions, "questions", false, "print the segmented questions")
	extractCmd.Flags().BoolVar(&extractFlags.pages, "pages", false, "include raw page text in json/yaml output")
}
