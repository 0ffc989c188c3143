package main

import (
	"encoding/json"
	"fmt"
	"os"

	"duscan/internal/estimate"
	"duscan/internal/mounts"
	"duscan/internal/pathutil"
	"duscan/internal/progress"

	"github.com/spf13/cobra"
)

var mountsCmd = &cobra.Command{
	Use:   "mounts",
	Short: "List the local mounts a scan would cover",
	Long: `List the local, non-virtual mount points under a root, exactly as the
scanner would pick them from the mount table.`,
	RunE: runMounts,
}

var (
	mountsRoot string
	mountsJSON bool
)

func init() {
	mountsCmd.Flags().StringVarP(&mountsRoot, "root", "r", "/", "Root path to discover mounts under")
	mountsCmd.Flags().BoolVar(&mountsJSON, "json", false, "Emit the mount list as JSON")
}

func runMounts(cmd *cobra.Command, args []string) error {
	root, err := pathutil.Normalize(mountsRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}

	roots, err := mounts.DiscoverLocalMountsUnder(root)
	if err != nil {
		return err
	}

	if mountsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(roots)
	}

	for _, mp := range roots {
		fmt.Printf("%-40s %12s used\n", mp, progress.FormatBytes(estimate.UsedBytes(mp)))
	}
	return nil
}
