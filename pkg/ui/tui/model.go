package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pinitdown/pkg/models"
	"pinitdown/pkg/report"
)

// Runner downloads links into dir and calls onResult as each one finishes.
// It returns every result in input order.
type Runner func(ctx context.Context, dir string, links []string, onResult func(models.DownloadResult)) []models.DownloadResult

// Screen is the part of the shell currently shown
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenSingle
	ScreenMulti
	ScreenOutput
	ScreenRunning
	ScreenDone
)

// menuItem is one numbered menu entry
type menuItem struct {
	key   string
	label string
}

var menuItems = []menuItem{
	{"1", "Download a single pin"},
	{"2", "Download multiple pins"},
	{"3", "Change output folder"},
	{"4", "Exit"},
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model represents the TUI model
type Model struct {
	spinner  spinner.Model
	progress progress.Model
	link     textinput.Model
	folder   textinput.Model
	links    textarea.Model

	screen    Screen
	cursor    int
	outputDir string
	runner    Runner
	onDone    func(*report.Summary)

	// batch state
	cancel    context.CancelFunc
	results   <-chan tea.Msg
	total     int
	done      int
	startTime time.Time
	summary   *report.Summary
	notice    string

	width          int
	height         int
	logMessages    []LogMessage
	maxLogMessages int
}

// Options configure a Model
type Options struct {
	OutputDir string
	Runner    Runner
	// OnBatchDone, when set, is called with the summary of each finished batch
	OnBatchDone func(*report.Summary)
}

// NewModel creates a new TUI model
func NewModel(opts Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(pinRed)

	link := textinput.New()
	link.Placeholder = "https://www.pinterest.com/pin/123456789/"
	link.CharLimit = 2048
	link.Width = 60

	folder := textinput.New()
	folder.Placeholder = "./downloads"
	folder.CharLimit = 1024
	folder.Width = 60

	links := textarea.New()
	links.Placeholder = "Paste links separated by newlines, spaces or commas"
	links.CharLimit = 0
	links.SetWidth(70)
	links.SetHeight(8)

	return &Model{
		spinner:        s,
		progress:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		link:           link,
		folder:         folder,
		links:          links,
		outputDir:      opts.OutputDir,
		runner:         opts.Runner,
		onDone:         opts.OnBatchDone,
		maxLogMessages: 50,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Screen returns the active screen
func (m *Model) Screen() Screen { return m.screen }

// OutputDir returns the folder new downloads are written to
func (m *Model) OutputDir() string { return m.outputDir }

// Summary returns the summary of the last finished batch, or nil
func (m *Model) Summary() *report.Summary { return m.summary }

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = errorRed
	case "WARN":
		color = warnOrange
	case "SUCCESS":
		color = okGreen
	case "INFO":
		color = pinRed
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// logResult turns a finished link into a log pane entry
func (m *Model) logResult(r models.DownloadResult) {
	switch r.Outcome {
	case models.OutcomeSuccess:
		m.AddLogMessage("SUCCESS", r.Path)
	case models.OutcomeNoAsset:
		m.AddLogMessage("WARN", r.Input+": "+r.Reason)
	default:
		m.AddLogMessage("ERROR", r.Input+": "+r.Reason)
	}
}

// percent is the share of the batch that has finished
func (m *Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}
