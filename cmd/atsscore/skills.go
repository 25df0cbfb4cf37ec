package main

import (
	"fmt"

	"ats-score-go/internal/constants"
	"ats-score-go/internal/processor"
	"ats-score-go/pkg/utils"

	"github.com/spf13/cobra"
)

func newSkillsCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List vocabulary skills found in a text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			skills, err := processor.NewKeywordSkillExtractor().ExtractSkills(cmd.Context(), processor.NormalizeText(text))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.JoinOr(skills.Sorted(), constants.NoMatchedSkillsMessage))
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "text to scan")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
