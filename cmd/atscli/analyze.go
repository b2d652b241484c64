package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-resume-matcher/pkg/atsscore"
	"go-resume-matcher/pkg/export"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Long:  "Extracts the top job description keywords and reports matches, gaps and suggestions for every resume section.",
	RunE:  runAnalyze,
}

var (
	analyzeResumeFile string
	analyzeJobFile    string
	analyzeJSON       bool
	analyzeExport     string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeResumeFile, "resume", "r", "", "Path to the resume (required)")
	analyzeCmd.Flags().StringVarP(&analyzeJobFile, "job", "j", "", "Path to the job description (required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
	analyzeCmd.Flags().StringVarP(&analyzeExport, "export", "o", "", "Also write the report to this .xlsx or .csv file")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	resume, err := readDocument(analyzeResumeFile)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}
	jobDescription, err := readDocument(analyzeJobFile)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}

	result := engine.Analyze(resume, jobDescription)
	out := cmd.OutOrStdout()

	if analyzeExport != "" {
		if err := writeExport(analyzeExport, result); err != nil {
			return err
		}
	}

	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"analysis": result.Sections})
	}
	printResult(out, result)
	if analyzeExport != "" {
		fmt.Fprintf(out, "\n%s Report written to %s\n", color.GreenString("✓"), analyzeExport)
	}
	return nil
}

func writeExport(path string, result atsscore.Result) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	data, _, _, err := export.Render(format, export.Report{
		CreatedAt:    time.Now(),
		OverallScore: result.OverallScore(),
		Keywords:     result.Keywords,
		Sections:     result.Sections,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printResult(w io.Writer, result atsscore.Result) {
	fmt.Fprintln(w, color.New(color.Bold, color.Underline).Sprint("ATS Analysis"))
	fmt.Fprintln(w, strings.Repeat("═", 50))
	fmt.Fprintf(w, "Overall score: %s\n", scoreString(result.OverallScore()))
	fmt.Fprintf(w, "Keywords (%d): %s\n", len(result.Keywords), strings.Join(result.Keywords, ", "))

	for _, s := range result.Sections {
		fmt.Fprintf(w, "\n%s %s\n", color.CyanString("→"), strings.ToUpper(s.Section.String()))
		fmt.Fprintf(w, "  Score:   %s\n", scoreString(s.ATSScore))
		if len(s.Matches) > 0 {
			fmt.Fprintf(w, "  Matches: %s\n", color.GreenString(strings.Join(s.Matches, ", ")))
		}
		if len(s.Missing) > 0 {
			fmt.Fprintf(w, "  Missing: %s\n", color.RedString(strings.Join(s.Missing, ", ")))
		}
		for _, tip := range s.Suggestions {
			fmt.Fprintf(w, "  %s %s\n", color.YellowString("•"), tip)
		}
	}
}

func scoreString(score int) string {
	text := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 75:
		return color.GreenString(text)
	case score >= 50:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}
