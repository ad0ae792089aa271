package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/lease-intake/internal/ingest"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the text of a single lease document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(a)

		f, err := ingest.LoadFile(args[0])
		if err != nil {
			return err
		}
		res, err := a.Extractor.Extract(cmd.Context(), f)
		if err != nil {
			return err
		}
		if res.StorageKey != "" {
			// the object was only needed for the OCR job
			if err := a.Store.Delete(cmd.Context(), res.StorageKey); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "could not remove %s: %v\n", res.StorageKey, err)
			}
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "method=%s pages=%d quality=%.2f elapsed=%s\n",
			res.Method, res.Pages, res.Quality, res.Duration.Round(time.Millisecond))
		for _, w := range res.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
