package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"initcheck/internal/driver"
)

const (
	statusColumn = 10
	tallyColumn  = 9
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// document is the view state of one input.
type document struct {
	path     string
	stage    driver.Stage
	status   driver.Status
	errors   int
	warnings int
	elapsed  time.Duration
}

func (d *document) finished() bool {
	return d.status == driver.StatusDone || d.status == driver.StatusCached || d.status == driver.StatusError
}

// weight is the share of the document's work already done.
func (d *document) weight() float64 {
	if d.finished() {
		return 1
	}
	if d.status != driver.StatusWorking {
		return 0
	}
	switch d.stage {
	case driver.StageLoad:
		return 0.1
	case driver.StageDecode:
		return 0.3
	case driver.StageCheck:
		return 0.6
	}
	return 0
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	docs    []document
	byPath  map[string]int
	width   int
	done    bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-document
// check progress with running error and warning counts. The model quits
// when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		docs:    make([]document, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.docs[i] = document{path: file, status: driver.StatusQueued}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
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
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	idx, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	d := &m.docs[idx]
	d.stage, d.status = ev.Stage, ev.Status
	if ev.Final() {
		d.errors, d.warnings, d.elapsed = ev.Errors, ev.Warnings, ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.docs) == 0 {
		return 0
	}
	total := 0.0
	for i := range m.docs {
		total += m.docs[i].weight()
	}
	return total / float64(len(m.docs))
}

func (m *progressModel) View() string {
	if len(m.docs) == 0 {
		return ""
	}
	var b strings.Builder
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusColumn-tallyColumn-6, 20)
	var errs, warns, finished int
	for i := range m.docs {
		d := &m.docs[i]
		if d.finished() {
			finished++
		}
		errs += d.errors
		warns += d.warnings
		status := styleFor(d).Render(fmt.Sprintf("%*s", statusColumn, statusText(d)))
		fmt.Fprintf(&b, "  %s %-*s %s\n", status, tallyColumn, tally(d), truncate(d.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	fmt.Fprintf(&b, "\n%d/%d documents, %d error(s), %d warning(s)\n", finished, len(m.docs), errs, warns)
	return b.String()
}

func statusText(d *document) string {
	if d.status != driver.StatusWorking {
		return string(d.status)
	}
	switch d.stage {
	case driver.StageLoad:
		return "loading"
	case driver.StageDecode:
		return "decoding"
	case driver.StageCheck:
		return "checking"
	}
	return "working"
}

// tally renders the finding counts of a finished document, e.g. "2E 1W".
func tally(d *document) string {
	if !d.finished() {
		return ""
	}
	var parts []string
	if d.errors > 0 {
		parts = append(parts, fmt.Sprintf("%dE", d.errors))
	}
	if d.warnings > 0 {
		parts = append(parts, fmt.Sprintf("%dW", d.warnings))
	}
	if len(parts) == 0 {
		return "ok"
	}
	return strings.Join(parts, " ")
}

func styleFor(d *document) lipgloss.Style {
	switch {
	case d.status == driver.StatusWorking:
		return workingStyle
	case !d.finished():
		return idleStyle
	case d.errors > 0 || d.status == driver.StatusError:
		return errStyle
	case d.warnings > 0:
		return warnStyle
	}
	return okStyle
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
