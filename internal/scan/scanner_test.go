package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"duscan/internal/category"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func categoryBytes(res *Result, c category.Category) (int64, bool) {
	for _, ct := range res.Categories {
		if ct.Category == c {
			return ct.Bytes, true
		}
	}
	return 0, false
}

func TestScanAggregatesByCategory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "media", "clip.mp4"), 4096)
	writeFile(t, filepath.Join(root, "media", "song.mp3"), 1024)
	writeFile(t, filepath.Join(root, "src", "main.rs"), 512)
	writeFile(t, filepath.Join(root, "src", "lib.rs"), 256)
	writeFile(t, filepath.Join(root, "mystery"), 100)

	res, err := Paths(context.Background(), []string{root}, DefaultConfig())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if b, ok := categoryBytes(res, category.Video); !ok || b != 4096 {
		t.Errorf("video bytes = %d, want 4096", b)
	}
	if b, ok := categoryBytes(res, category.Audio); !ok || b != 1024 {
		t.Errorf("audio bytes = %d, want 1024", b)
	}
	if b, ok := categoryBytes(res, category.Code); !ok || b != 768 {
		t.Errorf("code bytes = %d, want 768", b)
	}
	if b, ok := categoryBytes(res, category.Other); !ok || b != 100 {
		t.Errorf("other bytes = %d, want 100", b)
	}

	if res.FilesScanned != 5 {
		t.Errorf("files scanned = %d, want 5", res.FilesScanned)
	}
	// root, media, src
	if res.DirsScanned != 3 {
		t.Errorf("dirs scanned = %d, want 3", res.DirsScanned)
	}
	if res.SkippedErrors != 0 {
		t.Errorf("skipped = %d, want 0", res.SkippedErrors)
	}
	if res.MountsScanned != 1 {
		t.Errorf("mounts scanned = %d, want 1", res.MountsScanned)
	}
	if res.Cancelled {
		t.Errorf("scan should not report cancelled")
	}
}

func TestScanTotalBytesInvariant(t *testing.T) {
	root := t.TempDir()
	sizes := []int{10, 200, 3000, 40000, 500}
	names := []string{"a.pdf", "b.jpg", "c.mp3", "d.mkv", "e.zip"}
	for i, n := range names {
		writeFile(t, filepath.Join(root, n), sizes[i])
	}

	res, err := Paths(context.Background(), []string{root}, DefaultConfig())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	var sum int64
	for _, ct := range res.Categories {
		sum += ct.Bytes
	}
	if res.TotalBytes != sum {
		t.Fatalf("total_bytes %d != category sum %d", res.TotalBytes, sum)
	}
	if res.TotalBytes != 43710 {
		t.Fatalf("total_bytes = %d, want 43710", res.TotalBytes)
	}
}

func TestScanSkipsUnreadableEntries(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "clip.mp4"), 10_000_000)
	writeFile(t, filepath.Join(root, "main.rs"), 2_000_000)
	writeFile(t, filepath.Join(root, "locked", "secret.dat"), 123)
	// Readable but not searchable: names list, stats fail.
	if err := os.Chmod(filepath.Join(root, "locked"), 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(filepath.Join(root, "locked"), 0o755) })

	res, err := Paths(context.Background(), []string{root}, DefaultConfig())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if b, ok := categoryBytes(res, category.Video); !ok || b != 10_000_000 {
		t.Errorf("video bytes = %d, want 10000000", b)
	}
	if b, ok := categoryBytes(res, category.Code); !ok || b != 2_000_000 {
		t.Errorf("code bytes = %d, want 2000000", b)
	}
	if res.FilesScanned != 3 {
		t.Errorf("files scanned = %d, want 3", res.FilesScanned)
	}
	if res.SkippedErrors != 1 {
		t.Errorf("skipped = %d, want 1", res.SkippedErrors)
	}
}

func TestScanTopKBoundAndOrder(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("doc%02d.pdf", i)), (i+1)*100)
	}

	cfg := DefaultConfig()
	cfg.TopFilesPerCategory = 3
	res, err := Paths(context.Background(), []string{root}, cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(res.TopFilesByCategory) != 1 {
		t.Fatalf("expected one category with top files, got %d", len(res.TopFilesByCategory))
	}
	top := res.TopFilesByCategory[0]
	if top.Category != category.Documents {
		t.Fatalf("top files category = %v, want documents", top.Category)
	}
	if len(top.Files) != 3 {
		t.Fatalf("top-K bound violated: %d files kept", len(top.Files))
	}
	wantSizes := []int64{1000, 900, 800}
	for i, f := range top.Files {
		if f.Bytes != wantSizes[i] {
			t.Fatalf("top files not sorted descending: %+v", top.Files)
		}
	}
}

func TestScanTopKTieFirstSeen(t *testing.T) {
	root := t.TempDir()
	// Same size everywhere; single thread keeps task order deterministic.
	for _, n := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		writeFile(t, filepath.Join(root, n), 100)
	}

	cfg := DefaultConfig()
	cfg.Threads = 1
	cfg.TopFilesPerCategory = 2
	res, err := Paths(context.Background(), []string{root}, cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	top := res.TopFilesByCategory[0].Files
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if filepath.Base(top[0].Path) != "a.pdf" || filepath.Base(top[1].Path) != "b.pdf" {
		t.Fatalf("ties should keep first-seen order, got %q, %q", top[0].Path, top[1].Path)
	}
}

func TestScanShowAllFiles(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 30; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("img%02d.png", i)), 10+i)
	}

	cfg := DefaultConfig()
	cfg.TopFilesPerCategory = 5
	cfg.ShowAllFiles = true
	res, err := Paths(context.Background(), []string{root}, cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := len(res.TopFilesByCategory[0].Files); got != 30 {
		t.Fatalf("show_all_files should keep every file, got %d", got)
	}
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "big.mp4"), 1<<20)
	writeFile(t, filepath.Join(root, "small.txt"), 10)

	if err := os.Symlink(outside, filepath.Join(root, "link-dir")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "big.mp4"), filepath.Join(root, "link-file")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	res, err := Paths(context.Background(), []string{root}, DefaultConfig())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.FilesScanned != 1 {
		t.Fatalf("symlinks must not be followed or counted, files = %d", res.FilesScanned)
	}
	if _, ok := categoryBytes(res, category.Video); ok {
		t.Fatalf("symlinked video must not be counted")
	}
	if res.SkippedErrors != 0 {
		t.Fatalf("symlinks are not errors, skipped = %d", res.SkippedErrors)
	}
}

func TestScanProgressDeltasSumToTotal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "x.mp4"), 1000)
	writeFile(t, filepath.Join(root, "b", "y.mp3"), 300)
	writeFile(t, filepath.Join(root, "z.pdf"), 77)

	progressCh := make(chan int64, 16)
	done := make(chan int64)
	go func() {
		var sum int64
		for d := range progressCh {
			sum += d
		}
		done <- sum
	}()

	res, err := PathsWithProgress(context.Background(), []string{root}, DefaultConfig(), progressCh)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	close(progressCh)
	if sum := <-done; sum != res.TotalBytes {
		t.Fatalf("progress deltas sum to %d, total is %d", sum, res.TotalBytes)
	}
}

func TestScanCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Paths(ctx, []string{root}, DefaultConfig())
	if err != nil {
		t.Fatalf("cancelled scan should still return a result: %v", err)
	}
	if !res.Cancelled {
		t.Fatalf("expected Cancelled flag")
	}
}

func TestScanInvalidThreadCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threads = -2
	_, err := Paths(context.Background(), []string{"/"}, cfg)
	if err == nil {
		t.Fatalf("expected setup error for negative thread count")
	}
}

func TestScanMissingRootIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 5)

	res, err := Paths(context.Background(), []string{root, filepath.Join(root, "nope")}, DefaultConfig())
	if err != nil {
		t.Fatalf("missing root must not be fatal: %v", err)
	}
	if res.SkippedErrors != 1 {
		t.Fatalf("skipped = %d, want 1", res.SkippedErrors)
	}
	if res.MountsScanned != 2 {
		t.Fatalf("mounts scanned = %d, want 2", res.MountsScanned)
	}
}

func TestParallelismThreads(t *testing.T) {
	cases := []struct {
		preset Parallelism
		cpus   int
		want   int
	}{
		{ParallelismLow, 8, 2},
		{ParallelismLow, 1, 1},
		{ParallelismLow, 0, 1},
		{ParallelismLow, 5, 2},
		{ParallelismBalanced, 8, 4},
		{ParallelismBalanced, 7, 4},
		{ParallelismBalanced, 1, 1},
		{ParallelismHigh, 8, 8},
		{ParallelismHigh, 0, 1},
	}
	for _, tc := range cases {
		if got := tc.preset.Threads(tc.cpus); got != tc.want {
			t.Errorf("%v.Threads(%d) = %d, want %d", tc.preset, tc.cpus, got, tc.want)
		}
	}
}

// statUIDGID returns the owning uid/gid of path.
func statUIDGID(t *testing.T, path string) (uint32, uint32) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		t.Skip("no Stat_t on this platform")
	}
	return st.Uid, st.Gid
}

// nonOwnerUID returns a uid that is neither the owner of path nor root.
func nonOwnerUID(t *testing.T, path string) uint32 {
	t.Helper()
	owner, _ := statUIDGID(t, path)
	uid := owner + 1
	if uid == 0 {
		uid = 1
	}
	return uid
}

func TestScanCallerUIDSkipsUnsearchableDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.Chmod(root, 0o755); err != nil {
		t.Fatalf("chmod root: %v", err)
	}
	writeFile(t, filepath.Join(root, "open", "clip.mp4"), 100)
	writeFile(t, filepath.Join(root, "private", "movie.mp4"), 200)
	if err := os.Chmod(filepath.Join(root, "open"), 0o755); err != nil {
		t.Fatalf("chmod open: %v", err)
	}
	if err := os.Chmod(filepath.Join(root, "private"), 0o700); err != nil {
		t.Fatalf("chmod private: %v", err)
	}

	uid := nonOwnerUID(t, root)
	cfg := DefaultConfig()
	cfg.CallerUID = &uid

	res, err := Paths(context.Background(), []string{root}, cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.SkippedErrors != 1 {
		t.Fatalf("skipped = %d, want 1 (the unsearchable dir)", res.SkippedErrors)
	}
	if res.FilesScanned != 1 {
		t.Fatalf("files = %d, want 1", res.FilesScanned)
	}
	if got, _ := categoryBytes(res, category.Video); got != 100 {
		t.Fatalf("video bytes = %d, want 100 (open dir only)", got)
	}
}

func TestScanCallerGIDGrantsGroupSearch(t *testing.T) {
	root := t.TempDir()
	if err := os.Chmod(root, 0o755); err != nil {
		t.Fatalf("chmod root: %v", err)
	}
	shared := filepath.Join(root, "shared")
	writeFile(t, filepath.Join(shared, "song.mp3"), 300)
	if err := os.Chmod(shared, 0o750); err != nil {
		t.Fatalf("chmod shared: %v", err)
	}

	uid := nonOwnerUID(t, shared)
	_, gid := statUIDGID(t, shared)

	// Without the directory's group the subtree is unsearchable.
	cfg := DefaultConfig()
	cfg.CallerUID = &uid
	res, err := Paths(context.Background(), []string{root}, cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.SkippedErrors != 1 || res.FilesScanned != 0 {
		t.Fatalf("skipped = %d files = %d, want 1 and 0", res.SkippedErrors, res.FilesScanned)
	}

	// Holding the group grants the r+x group bits.
	cfg.CallerGIDs = []uint32{gid}
	res, err = Paths(context.Background(), []string{root}, cfg)
	if err != nil {
		t.Fatalf("scan with gid: %v", err)
	}
	if res.SkippedErrors != 0 {
		t.Fatalf("skipped = %d, want 0", res.SkippedErrors)
	}
	if got, _ := categoryBytes(res, category.Audio); got != 300 {
		t.Fatalf("audio bytes = %d, want 300", got)
	}
}

func TestScanCallerRootSeesEverything(t *testing.T) {
	root := t.TempDir()
	if err := os.Chmod(root, 0o755); err != nil {
		t.Fatalf("chmod root: %v", err)
	}
	writeFile(t, filepath.Join(root, "private", "movie.mp4"), 200)
	if err := os.Chmod(filepath.Join(root, "private"), 0o700); err != nil {
		t.Fatalf("chmod private: %v", err)
	}

	owner, _ := statUIDGID(t, root)
	if owner != 0 {
		// uid 0 bypasses the permission bits regardless of ownership.
		uid := uint32(0)
		cfg := DefaultConfig()
		cfg.CallerUID = &uid
		res, err := Paths(context.Background(), []string{root}, cfg)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if res.SkippedErrors != 0 || res.FilesScanned != 1 {
			t.Fatalf("skipped = %d files = %d, want 0 and 1", res.SkippedErrors, res.FilesScanned)
		}
	}
}
