package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/ingest"
	"github.com/joseph-ayodele/lease-intake/internal/pipeline"
	"github.com/joseph-ayodele/lease-intake/internal/scoring"
)

var (
	watchDir      string
	watchExisting bool
	watchWorkers  int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process lease documents as they appear in a directory",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "directory to watch (required)")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also process files already in the directory")
	watchCmd.Flags().IntVarP(&watchWorkers, "workers", "w", 2, "files processed in parallel")
	_ = watchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, logger, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	var outMu sync.Mutex
	report := func(job pipeline.Job, c entity.Contract, err error) {
		outMu.Lock()
		defer outMu.Unlock()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", job.Source, err)
			return
		}
		as := scoring.Assess(c.Analysis)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\trisk=%d\tquality=%d\t%s\n", c.FileName, as.RiskScore, as.QualityScore, c.Error)
	}
	queue := pipeline.NewQueue(a.Processor, report, logger, pipeline.WithWorkers(watchWorkers))
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_ = queue.Shutdown(drainCtx)
	}()

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{watchDir},
		IncludeExts: a.Config.Intake.AllowedExtensions,
		InitialScan: watchExisting,
		Debounce:    2 * time.Second,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watch.started", "dir", watchDir, "workers", watchWorkers)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			f, err := ingest.LoadFile(path)
			if err != nil {
				logger.Warn("watch.read_failed", "path", path, "error", err)
				continue
			}
			if err := queue.Enqueue(ctx, pipeline.Job{File: f, Source: path}); err != nil {
				return nil
			}
		}
	}
}
