package scan

import (
	"duscan/internal/category"
)

// CategoryTotal is the aggregated byte total for one category.
type CategoryTotal struct {
	Category category.Category `json:"category"`
	Bytes    int64             `json:"bytes"`
}

// TopFileEntry is one file in a category's largest-files list.
type TopFileEntry struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// CategoryTopFiles holds the largest files of one category, sorted
// descending by size.
type CategoryTopFiles struct {
	Category category.Category `json:"category"`
	Files    []TopFileEntry    `json:"files"`
}

// Result is the complete outcome of one scan invocation. It serializes to
// JSON as the stable machine-readable output format.
type Result struct {
	Categories         []CategoryTotal    `json:"categories"`
	TopFilesByCategory []CategoryTopFiles `json:"top_files_by_category"`
	TotalBytes         int64              `json:"total_bytes"`
	FilesScanned       int64              `json:"files_scanned"`
	DirsScanned        int64              `json:"dirs_scanned"`
	SkippedErrors      int64              `json:"skipped_errors"`
	MountsScanned      int                `json:"mounts_scanned"`
	ElapsedMs          int64              `json:"elapsed_ms"`
	Cancelled          bool               `json:"cancelled"`
}
