package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/droopymiller/yoink/internal/config"
	"github.com/droopymiller/yoink/internal/index"
	"github.com/droopymiller/yoink/internal/mirror"
	"github.com/droopymiller/yoink/internal/pdfmeta"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one mirror pass over all collections",
	Long: `Sync every collection in the downloads config once.

For each item:
  1. Resolves the item identifier to a concrete document URL
  2. Downloads the document to a temporary file
  3. Compares content digests against the existing local copy
  4. Keeps, replaces-and-archives, or first-writes the document

Per-item failures are reported and counted but never abort the run; the
exit code is non-zero only when the config itself is invalid.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.Load(viper.GetString("input"))
		if err != nil {
			return err
		}
		summary := runMirror(cmd.Context(), cfg, logger)
		fmt.Printf("All downloads processed: %s\n", summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// runMirror executes one full run over cfg's collections and optionally
// regenerates each folder's index page. Shared by sync and watch.
func runMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) mirror.Summary {
	collections := cfg.Collections()

	total := 0
	for _, col := range collections {
		total += len(col.Items)
	}

	engine := mirror.NewEngine(&mirror.EngineConfig{
		Title:  pdfmeta.Title,
		Logger: logger,
	})
	orch := mirror.NewOrchestrator(engine, &mirror.OrchestratorConfig{
		Workers:  viper.GetInt("threads"),
		Logger:   logger,
		OnResult: progressPrinter(total),
	})

	summary := orch.Run(ctx, collections)

	if viper.GetBool("index") {
		for _, col := range collections {
			if err := index.Write(col.Folder); err != nil {
				logger.Printf("[%s] failed to write index page: %v", col.Name, err)
			}
		}
	}

	return summary
}

// progressPrinter returns an OnResult callback that renders an in-place
// task counter when stdout is a terminal. Returns nil (no progress output)
// otherwise; the per-task log lines on stderr remain.
func progressPrinter(total int) func(mirror.Result) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	done := 0
	return func(mirror.Result) {
		done++
		fmt.Printf("\rProcessing %d/%d", done, total)
		if done == total {
			fmt.Println()
		}
	}
}
