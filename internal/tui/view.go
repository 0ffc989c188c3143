package tui

import (
	"fmt"
	"strings"
	"time"

	"duscan/internal/progress"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}
	if m.scanning {
		return m.scanView()
	}
	return m.resultView()
}

func (m *Model) scanView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("scan-categories"))
	b.WriteString("\n")

	bytes := m.bytes.Load()
	elapsed := time.Since(m.startTime).Round(time.Second)

	b.WriteString(m.spinner.View())
	b.WriteString(fmt.Sprintf(" Scanning %d mount(s)... ", len(m.roots)))
	b.WriteString(statsStyle.Render(elapsed.String()))
	b.WriteString("\n\n")

	if m.denominator > 0 {
		pct := progress.Percent(bytes, m.denominator)
		b.WriteString(m.bar.ViewAs(pct / 100))
		b.WriteString("\n\n")
	}

	rate := 0.0
	if m.rate != nil {
		rate = *m.rate
	}
	eta, ok := progress.ETAFromThroughput(bytes, m.denominator, rate)
	line := fmt.Sprintf("%s processed | %s/s | ETA %s",
		progress.FormatBytes(bytes),
		progress.FormatBytes(int64(rate)),
		progress.FormatETA(eta, ok),
	)
	b.WriteString(statsStyle.Render(line))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q: cancel"))
	return b.String()
}

func (m *Model) resultView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("scan-categories - Usage Breakdown"))
	b.WriteString("\n")

	res := m.result
	summary := fmt.Sprintf("Total: %s | Files: %s | Dirs: %s | Skipped: %s | %s",
		progress.FormatBytes(res.TotalBytes),
		FormatCount(res.FilesScanned),
		FormatCount(res.DirsScanned),
		FormatCount(res.SkippedErrors),
		time.Duration(res.ElapsedMs)*time.Millisecond,
	)
	if res.Cancelled {
		summary += " | CANCELLED"
	}
	b.WriteString(statsStyle.Render(summary))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %12s %8s", "CATEGORY", "SIZE", "SHARE")))
	b.WriteString("\n")

	for i, ct := range res.Categories {
		pct := progress.Percent(ct.Bytes, res.TotalBytes)
		row := fmt.Sprintf("%s %s %s",
			categoryStyle.Width(12).Render(ct.Category.String()),
			sizeStyle.Render(progress.FormatBytes(ct.Bytes)),
			pctStyle.Render(fmt.Sprintf("%.1f%%", pct)),
		)
		if i == m.cursor {
			row = selectedStyle.Render(fmt.Sprintf("%-12s %12s %8.1f%%",
				ct.Category.String(), progress.FormatBytes(ct.Bytes), pct))
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	// Largest files of the selected category.
	if m.cursor < len(res.Categories) {
		selected := res.Categories[m.cursor].Category
		for _, tf := range res.TopFilesByCategory {
			if tf.Category != selected {
				continue
			}
			b.WriteString("\n")
			b.WriteString(headerStyle.Render(fmt.Sprintf("Largest %s files", selected)))
			b.WriteString("\n")
			limit := min(len(tf.Files), max(5, m.height-len(res.Categories)-12))
			for _, f := range tf.Files[:limit] {
				b.WriteString(fileStyle.Render(fmt.Sprintf("%12s  %s",
					progress.FormatBytes(f.Bytes), truncateMiddle(f.Path, max(20, m.width-16)))))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString(helpStyle.Render("↑/↓ select category | q: quit"))
	return b.String()
}

func truncateMiddle(s string, width int) string {
	if len(s) <= width || width < 5 {
		return s
	}
	half := (width - 3) / 2
	return s[:half] + "..." + s[len(s)-(width-3-half):]
}
