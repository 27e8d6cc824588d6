// Package progress drives an optional terminal UI around a filter run:
// a live two-pass progress bar while the rewrite is in flight, and a
// post-run bar chart summarizing which record types were rewritten
// versus copied verbatim. Nothing in the core rewriter (package hprof)
// imports this package; it is wired in only by the CLI.
package progress

import (
	"fmt"
	"io"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	hprofmodel "github.com/parttimenerd/hprof-redact/internal/hprof/model"
)

// Event reports how far a pass has gotten, in bytes consumed from the
// input stream. Pass is 1 or 2; each pass is weighted equally (50% of
// the overall bar) since both read the same input once.
type Event struct {
	Pass       int
	BytesRead  int64
	TotalBytes int64
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type model struct {
	bar    progress.Model
	events <-chan Event
	label  string
	done   bool
}

type eventMsg Event
type doneMsg struct{}

func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return doneMsg{}
		}
		e, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(e)
	}
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if msg.TotalBytes > 0 {
			passProgress := float64(msg.BytesRead) / float64(msg.TotalBytes)
			overall := (float64(msg.Pass-1) + passProgress) / 2
			m.label = fmt.Sprintf("pass %d/2", msg.Pass)
			cmd := m.bar.SetPercent(overall)
			return m, tea.Batch(cmd, waitForEvent(m.events))
		}
		return m, waitForEvent(m.events)
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		newModel, cmd := m.bar.Update(msg)
		m.bar = newModel.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return barStyle.Render(labelStyle.Render(m.label) + "  " + m.bar.View())
}

// Run drives the live progress bar until events is closed. It is safe
// to call with a nil or already-closed channel: the program exits
// immediately.
func Run(events <-chan Event) error {
	m := model{
		bar:    progress.New(progress.WithDefaultGradient()),
		events: events,
		label:  "pass 1/2",
	}
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}

// RecordStats is the minimal view of hprof.Stats this package needs,
// kept narrow so it doesn't import the core rewriter package.
type RecordStats interface {
	RewrittenCount(tag hprofmodel.RecordTag) int
	CopiedCount(tag hprofmodel.RecordTag) int
	Tags() []hprofmodel.RecordTag
}

// WriteSummary renders a bar chart of rewritten-vs-copied record counts
// to w, one bar group per record tag that appeared in the run.
func WriteSummary(w io.Writer, stats RecordStats, width, height int) {
	bc := barchart.New(width, height)
	for _, tag := range stats.Tags() {
		bc.Push(barchart.BarData{
			Label: tag.String(),
			Values: []barchart.BarValue{
				{Name: "rewritten", Value: float64(stats.RewrittenCount(tag)), Style: lipgloss.NewStyle().Foreground(lipgloss.Color("205"))},
				{Name: "copied", Value: float64(stats.CopiedCount(tag)), Style: lipgloss.NewStyle().Foreground(lipgloss.Color("240"))},
			},
		})
	}
	bc.Draw()
	fmt.Fprintln(w, bc.View())
}
