// Package progress holds the pure numeric helpers behind live scan
// reporting: percent-complete against an estimated denominator, smoothed
// throughput, and ETA math. The scanner itself never imports this; it is
// consumed by whatever renders the byte-delta stream.
package progress

import (
	"fmt"
	"time"
)

// Percent returns the completion percentage of bytesProcessed against an
// estimated total, clamped to [0, 100]. A zero denominator yields 0.
func Percent(bytesProcessed, estimatedTotal int64) float64 {
	if estimatedTotal <= 0 {
		return 0.0
	}
	pct := float64(bytesProcessed) / float64(estimatedTotal) * 100
	if pct < 0 {
		return 0.0
	}
	if pct > 100 {
		return 100.0
	}
	return pct
}

// ETA estimates time remaining from the throughput observed since startedAt.
// The second return is false when no estimate is possible (zero denominator
// or nothing processed yet).
func ETA(bytesProcessed, estimatedTotal int64, startedAt time.Time) (time.Duration, bool) {
	if estimatedTotal <= 0 || bytesProcessed <= 0 {
		return 0, false
	}
	if bytesProcessed >= estimatedTotal {
		return 0, true
	}
	elapsed := time.Since(startedAt).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	return ETAFromThroughput(bytesProcessed, estimatedTotal, float64(bytesProcessed)/elapsed)
}

// ETAFromThroughput is ETA with an externally supplied (typically
// EWMA-smoothed) throughput in bytes per second.
func ETAFromThroughput(bytesProcessed, estimatedTotal int64, bytesPerSec float64) (time.Duration, bool) {
	if estimatedTotal <= 0 || bytesProcessed <= 0 {
		return 0, false
	}
	if bytesProcessed >= estimatedTotal {
		return 0, true
	}
	if bytesPerSec <= 0 {
		return 0, false
	}
	remaining := float64(estimatedTotal - bytesProcessed)
	return time.Duration(remaining / bytesPerSec * float64(time.Second)), true
}

// EWMA folds a new sample into an exponentially-weighted moving average.
// A nil previous seeds the average with the sample. Alpha is clamped to
// [0, 1].
func EWMA(previous *float64, sample, alpha float64) float64 {
	if previous == nil {
		return sample
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return *previous + alpha*(sample-*previous)
}

// FormatBytes renders a byte count in IEC units with one decimal place
// above the base unit.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatETA renders a duration as HH:MM:SS, or a placeholder when no
// estimate exists.
func FormatETA(d time.Duration, ok bool) string {
	if !ok {
		return "--:--:--"
	}
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
