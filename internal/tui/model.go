// Package tui is the interactive front end: a live progress view while the
// scan runs and a browsable per-category breakdown afterwards.
package tui

import (
	"context"
	"sync/atomic"
	"time"

	"duscan/internal/progress"
	"duscan/internal/scan"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the TUI state.
type Model struct {
	roots       []string
	cfg         *scan.Config
	denominator int64

	ctx    context.Context
	cancel context.CancelFunc

	spinner spinner.Model
	bar     progressbar.Model

	scanning  bool
	startTime time.Time
	bytes     atomic.Int64
	lastBytes int64
	lastTick  time.Time
	rate      *float64

	result *scan.Result
	err    error
	cursor int

	resultCh chan scanDoneMsg

	width  int
	height int
}

// NewModel creates a TUI model that will scan the given roots.
// denominator is the estimated total used bytes the progress bar divides by
// (zero disables the percentage).
func NewModel(roots []string, cfg *scan.Config, denominator int64) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		roots:       roots,
		cfg:         cfg,
		denominator: denominator,
		ctx:         ctx,
		cancel:      cancel,
		spinner:     s,
		bar:         progressbar.New(progressbar.WithDefaultGradient()),
		scanning:    true,
		startTime:   time.Now(),
		lastTick:    time.Now(),
		resultCh:    make(chan scanDoneMsg, 1),
	}
}

type tickMsg time.Time

type scanDoneMsg struct {
	result *scan.Result
	err    error
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForScan() tea.Cmd {
	return func() tea.Msg {
		return <-m.resultCh
	}
}

// Init implements tea.Model. It starts the scan and the byte-delta drain in
// their own goroutines; the model only ever reads the accumulated counter.
func (m *Model) Init() tea.Cmd {
	progressCh := make(chan int64, 4096)
	go func() {
		for delta := range progressCh {
			m.bytes.Add(delta)
		}
	}()
	go func() {
		res, err := scan.PathsWithProgress(m.ctx, m.roots, m.cfg, progressCh)
		close(progressCh)
		m.resultCh <- scanDoneMsg{result: res, err: err}
	}()
	return tea.Batch(m.spinner.Tick, tickCmd(), m.waitForScan())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(60, max(20, msg.Width-20))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if !m.scanning {
			return m, nil
		}
		now := time.Time(msg)
		dt := now.Sub(m.lastTick).Seconds()
		bytes := m.bytes.Load()
		if dt > 0 {
			sample := float64(bytes-m.lastBytes) / dt
			smoothed := progress.EWMA(m.rate, sample, 0.3)
			m.rate = &smoothed
		}
		m.lastBytes = bytes
		m.lastTick = now
		return m, tickCmd()

	case scanDoneMsg:
		m.scanning = false
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.cancel()
		return m, tea.Quit

	case "up", "k":
		if !m.scanning && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if !m.scanning && m.result != nil && m.cursor < len(m.result.Categories)-1 {
			m.cursor++
		}
		return m, nil
	}
	return m, nil
}

// Result returns the finished scan result, if any.
func (m *Model) Result() *scan.Result {
	return m.result
}
