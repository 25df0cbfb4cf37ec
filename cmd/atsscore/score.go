package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ats-score-go/internal/processor"
	"ats-score-go/internal/report"
	"ats-score-go/internal/storage"

	"github.com/spf13/cobra"
)

func newScoreCmd(root *rootOptions) *cobra.Command {
	var (
		resumePath string
		jobPath    string
		jobText    string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a PDF resume against a job description",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jobPath == "" && jobText == "" {
				return fmt.Errorf("one of --job or --job-text is required")
			}
			if jobPath != "" {
				data, err := os.ReadFile(jobPath)
				if err != nil {
					return fmt.Errorf("reading job description: %w", err)
				}
				jobText = string(data)
			}
			pdfData, err := os.ReadFile(resumePath)
			if err != nil {
				return fmt.Errorf("reading resume: %w", err)
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			storageManager, err := storage.NewStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer storageManager.Close()

			svc, err := processor.NewScoringService(ctx, cfg, processor.WithStorage(storageManager))
			if err != nil {
				return err
			}
			result, err := svc.ScoreDocument(ctx, pdfData, filepath.Base(resumePath), jobText)
			if err != nil {
				return err
			}

			view := report.BuildView(result)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			fmt.Fprintf(out, "Match Score: %s\n\n", view.ScoreText)
			fmt.Fprintf(out, "Matched Skills:\n%s\n\n", view.MatchedSkillsText)
			fmt.Fprintf(out, "Missing Skills:\n%s\n\n", view.MissingSkillsText)
			fmt.Fprintf(out, "Extracted Resume Text:\n%s\n", view.ResumePreview)
			return nil
		},
	}
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "path to the resume PDF")
	cmd.Flags().StringVar(&jobPath, "job", "", "path to a text file with the job description")
	cmd.Flags().StringVar(&jobText, "job-text", "", "job description text (alternative to --job)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("resume")
	cmd.MarkFlagsMutuallyExclusive("job", "job-text")
	return cmd
}
