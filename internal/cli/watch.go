package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/watch"
)

func newWatchCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var opts runOptions
	var initialScan bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and extract every new image or PDF",
		Long: `Watches a directory tree and runs the extraction pipeline on each
supported file that appears or changes. Per-file failures are logged and
watching continues until interrupted.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			files, errs, err := watch.Start(ctx, watch.Config{
				Roots:       []string{args[0]},
				InitialScan: initialScan,
				Debounce:    debounce,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", args[0])

			for {
				select {
				case <-ctx.Done():
					return nil
				case werr, ok := <-errs:
					if !ok {
						return nil
					}
					logger.Error("watch.error", "error", werr)
				case path, ok := <-files:
					if !ok {
						return nil
					}
					if rerr := runExtract(ctx, cmd.OutOrStdout(), cfg, logger, opts, path); rerr != nil {
						logger.Error("watch.file_failed", "path", path, "error", rerr)
						fmt.Fprintf(cmd.OutOrStdout(), "error processing %s: %v\n", path, rerr)
					}
				}
			}
		},
	}

	addRunFlags(cmd, &opts)
	cmd.Flags().BoolVar(&initialScan, "initial-scan", false, "also process files already present in the directory")
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "delay before processing a file after its last change")
	return cmd
}
