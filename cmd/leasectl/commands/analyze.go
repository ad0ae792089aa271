package commands

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/scoring"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <textfile>",
	Short: "Analyze already extracted lease text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		a, _, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(a)

		outcome := a.Analyzer.Analyze(cmd.Context(), string(text), filepath.Base(args[0]))
		result := outcome.Lower()

		var failure string
		if f, failed := outcome.Failure(); failed {
			failure = string(f.Kind) + ": " + f.Reason
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Analysis   entity.AnalysisResult `json:"analysis"`
			Assessment scoring.Assessment    `json:"assessment"`
			Failure    string                `json:"failure,omitempty"`
		}{result, scoring.Assess(result), failure})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
