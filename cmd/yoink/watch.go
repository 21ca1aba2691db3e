package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/droopymiller/yoink/internal/config"
	"github.com/droopymiller/yoink/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Mirror continuously, re-running when the config changes",
	Long: `Run one mirror pass, then keep watching the downloads config file
and re-run the pass whenever it changes.

Re-runs are idempotent: unchanged documents are detected by content digest
and left alone, so editing the config only costs the resolve requests for
items already up to date. A config that fails validation after an edit is
reported and skipped; the watcher keeps running with the last good state
untouched.

Stop with Ctrl-C (SIGINT) or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		input := viper.GetString("input")

		// The first pass must have a valid config; later edits may
		// break it without stopping the watcher.
		cfg, err := config.Load(input)
		if err != nil {
			return err
		}
		runMirror(cmd.Context(), cfg, logger)

		watchCfg := watch.DefaultConfig()
		watchCfg.Logger = logger
		watcher, err := watch.New(input, watchCfg)
		if err != nil {
			return err
		}

		err = watcher.Start(func() {
			cfg, err := config.Load(input)
			if err != nil {
				logger.Printf("config invalid, keeping previous state: %v", err)
				return
			}
			runMirror(cmd.Context(), cfg, logger)
		})
		if err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sig:
			logger.Printf("received %v, stopping", s)
		case <-cmd.Context().Done():
		}

		return watcher.Stop()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
