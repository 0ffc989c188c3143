package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scan-categories",
	Short: "Break down disk usage by file category",
	Long: `scan-categories walks the local filesystems under a root, classifies
every file into a usage category (documents, images, audio, video,
archives, code, binaries, packages, system, other), and reports
per-category totals with the largest files of each.`,
	RunE: runScan,
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(mountsCmd)
	rootCmd.AddCommand(tuiCmd)
}
