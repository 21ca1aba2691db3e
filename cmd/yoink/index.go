package main

import (
	"github.com/spf13/cobra"

	"github.com/droopymiller/yoink/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index <folder>",
	Short: "Generate a browsable index.html for a storage folder",
	Long: `Generate a static, searchable index.html listing the documents in
a storage folder.

The page lists every file except .html files, sorted case-insensitively.
Subdirectories such as archive/ are not listed. The page is regenerated
from scratch each time; it keeps no state of its own.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return index.Write(args[0])
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
