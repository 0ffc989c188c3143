package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// walker performs the depth-first walk of one disjoint subtree. All mutable
// state lives in its thread-local accumulator; the only shared resource it
// touches is the multi-producer progress channel.
type walker struct {
	cfg      *Config
	rootDev  uint64
	acc      *accumulator
	progress chan<- int64
}

// run walks the task rooted at path. isDir is the dirent-type hint from the
// partitioning step, used for accounting when the entry cannot be stat'ed
// at all. Every error below the task root is recovered locally: counted
// into the accumulator and skipped.
func (w *walker) run(ctx context.Context, path string, isDir bool) {
	info, err := os.Lstat(path)
	if err != nil {
		if isDir {
			w.acc.dirs++
		} else {
			w.acc.files++
		}
		w.acc.skipped++
		return
	}
	if !info.IsDir() {
		w.visitFile(ctx, path, info)
		return
	}

	w.acc.dirs++
	if dev, ok := deviceID(info); ok && dev != w.rootDev {
		// Separately mounted filesystem not named in the scan roots.
		return
	}
	if !w.canSearch(info) {
		w.acc.skipped++
		return
	}

	stack := []string{path}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = w.scanDir(ctx, dir, stack)
	}
}

// scanDir reads one directory, accounts for every entry, and pushes
// descendable subdirectories onto the stack. Directories are counted here,
// at dirent time, so an entry that later fails to stat is still counted
// exactly once.
func (w *walker) scanDir(ctx context.Context, dir string, stack []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.acc.skipped++
		return stack
	}

	for i, de := range entries {
		if i%100 == 0 && ctx.Err() != nil {
			return stack
		}
		child := filepath.Join(dir, de.Name())

		switch {
		case de.IsDir():
			w.acc.dirs++
			info, err := de.Info()
			if err != nil {
				w.acc.skipped++
				continue
			}
			if dev, ok := deviceID(info); ok && dev != w.rootDev {
				continue
			}
			if !w.canSearch(info) {
				w.acc.skipped++
				continue
			}
			stack = append(stack, child)

		case de.Type().IsRegular():
			w.acc.files++
			info, err := de.Info()
			if err != nil {
				w.acc.skipped++
				continue
			}
			w.record(ctx, child, info.Size())

		case de.Type()&fs.ModeSymlink != 0:
			// Never followed: no stat of the target, no descent.

		default:
			// Sockets, FIFOs and devices hold no usage data.
		}
	}
	return stack
}

func (w *walker) visitFile(ctx context.Context, path string, info os.FileInfo) {
	if !info.Mode().IsRegular() {
		return
	}
	w.acc.files++
	w.record(ctx, path, info.Size())
}

func (w *walker) record(ctx context.Context, path string, size int64) {
	if w.progress != nil {
		// Byte delta, not a running total; the consumer accumulates.
		select {
		case w.progress <- size:
		case <-ctx.Done():
			return
		}
	}
	w.acc.addFile(path, size)
}

// canSearch reports whether the caller identity may list and stat the
// contents of the directory. Without a caller identity the walk runs with
// the process's own credentials and the kernel enforces access.
func (w *walker) canSearch(info os.FileInfo) bool {
	if w.cfg.CallerUID == nil {
		return true
	}
	uid := *w.cfg.CallerUID
	if uid == 0 {
		return true
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return true
	}
	// Listing needs the read bit, stating children needs the search bit.
	mode := info.Mode().Perm()
	if st.Uid == uid {
		return mode&0o500 == 0o500
	}
	for _, gid := range w.cfg.CallerGIDs {
		if st.Gid == gid {
			return mode&0o050 == 0o050
		}
	}
	return mode&0o005 == 0o005
}

// deviceID extracts the device identifier used for the filesystem-boundary
// check.
func deviceID(info os.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true
}
