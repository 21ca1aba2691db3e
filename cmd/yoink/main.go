// Command yoink mirrors remotely hosted PDF documents into local folders,
// archiving superseded versions.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var rootCmd = &cobra.Command{
	Use:   "yoink",
	Short: "Mirror remote PDF documents into local folders",
	Long: `yoink keeps local mirrors of remotely hosted PDF documents in sync
with their source.

Each collection in the downloads config names a search endpoint, a storage
folder, a naming policy, and a list of item identifiers. yoink resolves each
identifier to a document URL, downloads it, and compares content digests
against the local copy: unchanged documents are left alone, changed ones are
replaced after the old version is moved into a dated archive folder.

Individual document failures never abort the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("input", "i", "downloads.yaml", "YAML downloads config file")
	rootCmd.PersistentFlags().IntP("threads", "t", 4, "Max concurrent downloads")
	rootCmd.PersistentFlags().Bool("index", false, "Regenerate each folder's index.html after syncing")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file (rotated)")

	viper.BindPFlag("input", rootCmd.PersistentFlags().Lookup("input"))
	viper.BindPFlag("threads", rootCmd.PersistentFlags().Lookup("threads"))
	viper.BindPFlag("index", rootCmd.PersistentFlags().Lookup("index"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.SetEnvPrefix("YOINK")
	viper.AutomaticEnv()
}

// newLogger builds the run logger. With --log-file set, lines go to stderr
// and to a size-rotated log file.
func newLogger() *log.Logger {
	var w io.Writer = os.Stderr
	if path := viper.GetString("log_file"); path != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
	}
	return log.New(w, "", log.LstdFlags)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
