package scan

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalidThreadCount is returned when the configured worker count cannot
// produce a usable pool. It aborts the scan before any traversal begins.
var ErrInvalidThreadCount = errors.New("scan: invalid thread count")

// Parallelism is a coarse preset for sizing the worker pool when the caller
// does not supply a raw thread count.
type Parallelism int

const (
	// ParallelismHigh uses every CPU. Zero value, so an unset preset
	// behaves like plain "derive from CPU count".
	ParallelismHigh Parallelism = iota
	ParallelismBalanced
	ParallelismLow
)

func (p Parallelism) String() string {
	switch p {
	case ParallelismLow:
		return "low"
	case ParallelismBalanced:
		return "balanced"
	default:
		return "high"
	}
}

// ParseParallelism maps a preset name to its Parallelism value.
func ParseParallelism(s string) (Parallelism, error) {
	switch s {
	case "low":
		return ParallelismLow, nil
	case "balanced":
		return ParallelismBalanced, nil
	case "high":
		return ParallelismHigh, nil
	}
	return ParallelismHigh, fmt.Errorf("invalid parallelism %q (expected low|balanced|high)", s)
}

// Threads maps the preset to a worker count for the given CPU count:
// Low = ceil(cpus/4), Balanced = ceil(cpus/2), High = cpus, every result
// clamped to at least 1.
func (p Parallelism) Threads(cpuCount int) int {
	if cpuCount < 1 {
		cpuCount = 1
	}
	switch p {
	case ParallelismLow:
		return (cpuCount + 3) / 4
	case ParallelismBalanced:
		return (cpuCount + 1) / 2
	default:
		return cpuCount
	}
}

// Config controls a single scan invocation.
type Config struct {
	// Threads is the worker pool size. Zero means auto-select from the
	// CPU count using the Parallelism preset.
	Threads int

	// Parallelism sizes the pool when Threads is zero.
	Parallelism Parallelism

	// TopFilesPerCategory bounds the largest-files list kept per category.
	TopFilesPerCategory int

	// ShowAllFiles retains a full file listing per category instead of
	// the bounded top-K.
	ShowAllFiles bool

	// CallerUID and CallerGIDs, when set, make traversal permission-aware:
	// directories that identity cannot search are skipped rather than
	// descended into. Nil CallerUID means "scan as the current process".
	CallerUID  *uint32
	CallerGIDs []uint32
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		TopFilesPerCategory: 20,
	}
}

func (c *Config) threadCount() (int, error) {
	if c.Threads < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidThreadCount, c.Threads)
	}
	if c.Threads > 0 {
		return c.Threads, nil
	}
	return c.Parallelism.Threads(runtime.NumCPU()), nil
}

// effectiveTopK returns the per-category retention limit: negative means
// unbounded (ShowAllFiles).
func (c *Config) effectiveTopK() int {
	if c.ShowAllFiles {
		return -1
	}
	return c.TopFilesPerCategory
}
