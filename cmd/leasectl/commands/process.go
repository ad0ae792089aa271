package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/ingest"
	"github.com/joseph-ayodele/lease-intake/internal/pipeline"
	"github.com/joseph-ayodele/lease-intake/internal/scoring"
)

var (
	processDir       string
	processOut       string
	processJSON      bool
	processRecursive bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process every lease document in a directory",
	Long:  "Load supported documents from a directory, run extraction and analysis on the batch, and write an XLSX export.",
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processDir, "dir", "d", "", "directory containing lease documents (required)")
	processCmd.Flags().StringVarP(&processOut, "out", "o", "", "output XLSX path (default <dir>/../contracts.xlsx)")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "print contracts as JSON instead of a table")
	processCmd.Flags().BoolVarP(&processRecursive, "recursive", "r", false, "descend into subdirectories")
	_ = processCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, logger, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	files, skipped, stats, err := ingest.LoadDirectory(ctx, processDir, ingest.DirOptions{
		IncludeExts: a.Config.Intake.AllowedExtensions,
		SkipHidden:  true,
		Recursive:   processRecursive,
	}, logger)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", s.Error())
	}
	if len(files) == 0 {
		return fmt.Errorf("no lease documents found in %s (scanned %d files)", processDir, stats.Scanned)
	}

	contracts, batch, err := a.Processor.ProcessDetailed(ctx, files)
	if err != nil {
		return err
	}

	out := processOut
	if out == "" {
		out = filepath.Join(filepath.Dir(filepath.Clean(processDir)), "contracts.xlsx")
	}
	xlsx, err := a.Exporter.ContractsXLSX(contracts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, xlsx, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	w := cmd.OutOrStdout()
	if processJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"contracts": contracts, "stats": batch, "export": out})
	}
	printContracts(cmd, contracts, batch)
	fmt.Fprintf(w, "\nexport written to %s\n", out)
	return nil
}

func printContracts(cmd *cobra.Command, contracts []entity.Contract, batch pipeline.BatchStats) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tMETHOD\tROYALTY\tRISK\tQUALITY\tERROR")
	for _, c := range contracts {
		a := scoring.Assess(c.Analysis)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", c.FileName, c.Method, c.Analysis.Royalty, a.RiskScore, a.QualityScore, c.Error)
	}
	_ = tw.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d files: %d succeeded, %d failed, %d high risk, average quality %.1f\n",
		batch.Total, batch.Succeeded, batch.Failed, batch.HighRisk, batch.AverageQuality)
}

type closer interface {
	Close(ctx context.Context) error
}

func closeApp(a closer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
}
