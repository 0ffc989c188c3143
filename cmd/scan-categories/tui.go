package main

import (
	"fmt"

	"duscan/internal/estimate"
	"duscan/internal/mounts"
	"duscan/internal/pathutil"
	"duscan/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Scan interactively with a live progress view",
	Long: `Run a scan with a live progress display, then browse the per-category
breakdown and largest files interactively.`,
	RunE: runTUI,
}

var tuiRoot string

func init() {
	tuiCmd.Flags().StringVarP(&tuiRoot, "root", "r", "/", "Root path to scan")
	addScanTuningFlags(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	root, err := pathutil.Normalize(tuiRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := buildScanConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	roots, err := mounts.DiscoverLocalMountsUnder(root)
	if err != nil {
		return err
	}

	var cache *estimate.Cache
	if !fileCfg.DisableEstimateCache {
		if path, err := estimate.DefaultPath(); err == nil {
			cache, _ = estimate.Open(path)
		}
	}
	if cache != nil {
		defer cache.Close()
	}
	denominator := estimate.Denominator(cache, root, roots)

	model := tui.NewModel(roots, cfg, denominator)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if cache != nil {
		if res := model.Result(); res != nil && !res.Cancelled {
			_ = cache.Put(root, res.TotalBytes)
		}
	}
	return nil
}
