package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the ranked keywords of a job description",
	RunE:  runKeywords,
}

var keywordsJobFile string

func init() {
	keywordsCmd.Flags().StringVarP(&keywordsJobFile, "job", "j", "", "Path to the job description (required)")
	_ = keywordsCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	jobDescription, err := readDocument(keywordsJobFile)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, kc := range engine.KeywordCounts(jobDescription) {
		fmt.Fprintf(out, "%2d. %-24s %s\n", i+1, kc.Keyword, color.CyanString("×%d", kc.Count))
	}
	return nil
}
