package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"duscan/internal/config"
	"duscan/internal/estimate"
	"duscan/internal/mounts"
	"duscan/internal/pathutil"
	"duscan/internal/progress"
	"duscan/internal/scan"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagRoot        string
	flagJSON        bool
	flagThreads     int
	flagParallelism string
	flagTopFiles    int
	flagShowAll     bool
	flagConfig      string
	flagInterval    time.Duration
	flagNoCache     bool
	flagCallerUID   int64
	flagCallerGIDs  []int64
)

func init() {
	rootCmd.Flags().StringVarP(&flagRoot, "root", "r", "/", "Root path to scan")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "Emit the result as JSON")
	rootCmd.Flags().DurationVar(&flagInterval, "progress-interval", 0, "Progress redraw interval (0 = config default)")
	rootCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Skip the estimate cache")
	addScanTuningFlags(rootCmd)
}

// addScanTuningFlags registers the flags shared by every command that runs a
// scan, so buildScanConfig sees the same overrides everywhere.
func addScanTuningFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagThreads, "threads", "t", 0, "Worker threads (0 = auto from CPU count)")
	cmd.Flags().StringVar(&flagParallelism, "parallelism", "", "Preset when --threads is 0: low|balanced|high")
	cmd.Flags().IntVar(&flagTopFiles, "top-files-per-category", 20, "Largest files kept per category")
	cmd.Flags().BoolVar(&flagShowAll, "show-all-files", false, "Keep every file per category, not just the top N")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file path")
	cmd.Flags().Int64Var(&flagCallerUID, "caller-uid", -1, "Evaluate directory access as this uid (-1 = current process)")
	cmd.Flags().Int64SliceVar(&flagCallerGIDs, "caller-gid", nil, "Supplementary gids for --caller-uid (can be repeated)")
}

// buildScanConfig merges the config file with command-line overrides.
func buildScanConfig(cmd *cobra.Command, fileCfg *config.Config) (*scan.Config, error) {
	cfg := scan.DefaultConfig()
	cfg.Threads = fileCfg.Threads
	cfg.TopFilesPerCategory = fileCfg.TopFilesPerCategory
	cfg.ShowAllFiles = fileCfg.ShowAllFiles

	preset, err := scan.ParseParallelism(fileCfg.Parallelism)
	if err != nil {
		return nil, err
	}
	cfg.Parallelism = preset

	if cmd.Flags().Changed("threads") {
		cfg.Threads = flagThreads
	}
	if flagParallelism != "" {
		preset, err := scan.ParseParallelism(flagParallelism)
		if err != nil {
			return nil, err
		}
		cfg.Parallelism = preset
	}
	if cmd.Flags().Changed("top-files-per-category") {
		cfg.TopFilesPerCategory = flagTopFiles
	}
	if cmd.Flags().Changed("show-all-files") {
		cfg.ShowAllFiles = flagShowAll
	}
	if flagCallerUID >= 0 {
		uid := uint32(flagCallerUID)
		cfg.CallerUID = &uid
		for _, gid := range flagCallerGIDs {
			cfg.CallerGIDs = append(cfg.CallerGIDs, uint32(gid))
		}
	}
	return cfg, nil
}

func loadFileConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := pathutil.Normalize(flagRoot)
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
		var invalid *mounts.InvalidLineError
		if errors.As(err, &invalid) {
			return fmt.Errorf("mount table is malformed: %w", err)
		}
		return err
	}

	var cache *estimate.Cache
	if !flagNoCache && !fileCfg.DisableEstimateCache {
		if path, err := estimate.DefaultPath(); err == nil {
			// A broken cache only degrades the progress display.
			cache, _ = estimate.Open(path)
		}
	}
	if cache != nil {
		defer cache.Close()
	}
	denominator := estimate.Denominator(cache, root, roots)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	interval := flagInterval
	if interval == 0 {
		interval = time.Duration(fileCfg.ProgressIntervalMs) * time.Millisecond
	}

	var progressCh chan int64
	var reporter *progressReporter
	if !flagJSON && isTerminal() {
		progressCh = make(chan int64, 4096)
		reporter = newProgressReporter(progressCh, denominator, interval)
		reporter.start()
	}

	res, err := scan.PathsWithProgress(ctx, roots, cfg, progressCh)
	if reporter != nil {
		close(progressCh)
		reporter.finish(err == nil && res != nil && !res.Cancelled)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if cache != nil && !res.Cancelled {
		// Remember the observed total as next scan's denominator.
		_ = cache.Put(root, res.TotalBytes)
	}

	if flagJSON {
		return printJSON(res)
	}
	printHuman(res, roots)
	return nil
}

func printJSON(res *scan.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printHuman(res *scan.Result, roots []string) {
	if res.Cancelled {
		fmt.Println("Scan cancelled; showing partial results.")
	}
	fmt.Printf("Scanned %d mount(s) in %s\n\n", res.MountsScanned,
		(time.Duration(res.ElapsedMs) * time.Millisecond).Round(time.Millisecond))

	fmt.Printf("%-12s %12s %8s\n", "CATEGORY", "SIZE", "SHARE")
	for _, ct := range res.Categories {
		fmt.Printf("%-12s %12s %7.1f%%\n",
			ct.Category,
			progress.FormatBytes(ct.Bytes),
			progress.Percent(ct.Bytes, res.TotalBytes))
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total: %s\n", progress.FormatBytes(res.TotalBytes))
	fmt.Printf("  Files: %s\n", humanize.Comma(res.FilesScanned))
	fmt.Printf("  Directories: %s\n", humanize.Comma(res.DirsScanned))
	if res.SkippedErrors > 0 {
		fmt.Printf("  Skipped (unreadable): %s\n", humanize.Comma(res.SkippedErrors))
	}

	for _, tf := range res.TopFilesByCategory {
		if len(tf.Files) == 0 {
			continue
		}
		fmt.Printf("\nTop %d largest %s files:\n", len(tf.Files), tf.Category)
		for _, f := range tf.Files {
			fmt.Printf("  %12s  %s\n", progress.FormatBytes(f.Bytes), f.Path)
		}
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// progressReporter owns accumulation of the byte-delta stream and the
// single \r-overwritten progress line. Workers produce concurrently; this
// is the one consumer.
type progressReporter struct {
	ch          chan int64
	denominator int64
	interval    time.Duration
	out         io.Writer
	bytes       atomic.Int64
	done        chan struct{}
	drained     chan struct{}
	rendered    chan struct{}
}

func newProgressReporter(ch chan int64, denominator int64, interval time.Duration) *progressReporter {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &progressReporter{
		ch:          ch,
		denominator: denominator,
		interval:    interval,
		out:         os.Stderr,
		done:        make(chan struct{}),
		drained:     make(chan struct{}),
		rendered:    make(chan struct{}),
	}
}

func (r *progressReporter) start() {
	go func() {
		defer close(r.drained)
		for delta := range r.ch {
			r.bytes.Add(delta)
		}
	}()
	go func() {
		defer close(r.rendered)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		var rate *float64
		lastBytes := int64(0)
		lastTick := time.Now()
		for {
			select {
			case <-r.done:
				return
			case now := <-ticker.C:
				bytes := r.bytes.Load()
				if dt := now.Sub(lastTick).Seconds(); dt > 0 {
					sample := float64(bytes-lastBytes) / dt
					smoothed := progress.EWMA(rate, sample, 0.3)
					rate = &smoothed
				}
				lastBytes = bytes
				lastTick = now
				r.render(bytes, rate)
			}
		}
	}()
}

func (r *progressReporter) render(bytes int64, rate *float64) {
	pct := progress.Percent(bytes, r.denominator)
	rateVal := 0.0
	if rate != nil {
		rateVal = *rate
	}
	eta, ok := progress.ETAFromThroughput(bytes, r.denominator, rateVal)
	fmt.Fprintf(r.out, "\r\033[K%5.1f%% | %s | %s/s | ETA %s",
		pct,
		progress.FormatBytes(bytes),
		progress.FormatBytes(int64(rateVal)),
		progress.FormatETA(eta, ok),
	)
}

// finish stops rendering and finalizes the line, or clears it on an
// incomplete scan. The completed line reports the percentage the observed
// bytes reached against the estimate: a statfs-derived denominator is an
// overestimate for subtree scans, so the true figure can end well under
// 100%. The caller must close the progress channel first.
func (r *progressReporter) finish(completed bool) {
	<-r.drained
	close(r.done)
	<-r.rendered
	if completed {
		bytes := r.bytes.Load()
		fmt.Fprintf(r.out, "\r\033[K%5.1f%% | %s | done\n",
			progress.Percent(bytes, r.denominator), progress.FormatBytes(bytes))
	} else {
		fmt.Fprintf(r.out, "\r\033[K")
	}
}
