package main

import (
	"fmt"

	"ats-score-go/internal/constants"
	"ats-score-go/internal/processor"
	"ats-score-go/pkg/utils"

	"github.com/spf13/cobra"
)

func newExtractCmd(root *rootOptions) *cobra.Command {
	var (
		pdfPath   string
		maxLen    int
		normalize bool
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the text extracted from a PDF resume",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			extractor, err := processor.BuildPDFExtractor(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			text, metadata, err := extractor.ExtractFromFile(cmd.Context(), pdfPath)
			if err != nil {
				return err
			}
			if normalize {
				text = processor.NormalizeText(text)
			}
			if maxLen > 0 {
				var truncated bool
				if text, truncated = utils.TruncateRunes(text, maxLen); truncated {
					text += constants.PreviewEllipsis
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			fmt.Fprintf(cmd.ErrOrStderr(), "pages=%v empty_pages=%v\n", metadata["page_count"], metadata["empty_pages"])
			return nil
		},
	}
	cmd.Flags().StringVarP(&pdfPath, "pdf", "p", "", "path to the PDF file")
	cmd.Flags().IntVar(&maxLen, "maxlen", 0, "truncate output to N characters (0: no limit)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "lowercase and collapse whitespace")
	_ = cmd.MarkFlagRequired("pdf")
	return cmd
}
