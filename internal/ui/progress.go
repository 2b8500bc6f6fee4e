package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tern/internal/pipeline"
)

type progressModel struct {
	title      string
	events     <-chan pipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type fileItem struct {
	path   string
	status string
	stage  pipeline.Stage
	final  bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// a check over units. It quits once events is closed.
func NewProgressModel(title string, units []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]fileItem, 0, len(units))
	index := make(map[string]int, len(units))
	for i, unit := range units {
		items = append(items, fileItem{path: unit, status: "queued"})
		index[unit] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := pipeline.Event(msg)
		cmd := m.applyEvent(ev)
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.stageLabel != "" {
		header += " (" + m.stageLabel + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-4, 20)
	var finished, failed int
	for _, item := range m.items {
		fmt.Fprintf(&b, "  %s %s\n",
			styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status)),
			truncate(item.path, nameWidth))
		if item.final {
			finished++
		}
		if item.status == "error" {
			failed++
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	fmt.Fprintf(&b, "\n%d/%d units", finished, len(m.items))
	if failed > 0 {
		b.WriteString(", " + styleStatus("error").Render(fmt.Sprintf("%d with errors", failed)))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.Unit == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.Unit]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	switch ev.Status {
	case pipeline.StatusDone, pipeline.StatusError, pipeline.StatusSkipped:
		// done на этапе export ещё не конец: финальное событие приходит от analyze
		item.final = ev.Stage == pipeline.StageAnalyze || ev.Status != pipeline.StatusDone
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if item.final {
			total += 1.0
		} else {
			total += progressFromStage(item.stage)
		}
	}
	return total / float64(len(m.items))
}

// stageInfo describes how a unit at a pipeline stage is shown.
type stageInfo struct {
	label string
	share float64 // доля работы, выполненная к началу стадии
}

var stages = map[pipeline.Stage]stageInfo{
	pipeline.StageRead:    {"reading", 0.1},
	pipeline.StageOrder:   {"ordering", 0.2},
	pipeline.StageAnalyze: {"analysing", 0.5},
	pipeline.StageExport:  {"exporting", 0.9},
}

func progressFromStage(stage pipeline.Stage) float64 { return stages[stage].share }

func statusLabel(stage pipeline.Stage, status pipeline.Status) string {
	switch status {
	case pipeline.StatusQueued:
		return "queued"
	case pipeline.StatusDone:
		return "done"
	case pipeline.StatusError:
		return "error"
	case pipeline.StatusSkipped:
		return "skipped"
	case pipeline.StatusWorking:
		return stages[stage].label
	}
	return ""
}

const statusWidth = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	statusColors = map[string]lipgloss.Color{
		"done":    "2",
		"error":   "1",
		"skipped": "3",
	}
)

func styleStatus(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = "7"
		for _, st := range stages {
			if st.label == status {
				c = "6"
			}
		}
	}
	return lipgloss.NewStyle().Foreground(c)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
