// Package main provides atscli, an offline resume scorer.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "atscli",
	Short:         "Score resumes against job descriptions offline",
	Long:          "atscli runs the ATS keyword engine on local resume and job description files (PDF, DOCX, TXT, MD, HTML).",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var stopWordsFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&stopWordsFile, "stop-words", os.Getenv("STOP_WORDS_FILE"), "stop-word file: YAML {mode, stop_words} mapping, YAML list, or one word per line")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
