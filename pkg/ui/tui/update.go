package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"pinitdown/pkg/models"
	"pinitdown/pkg/pin"
	"pinitdown/pkg/report"
	"pinitdown/pkg/storage"
)

// ResultMsg carries one finished link
type ResultMsg struct {
	Result models.DownloadResult
}

// BatchDoneMsg is sent once every link of a batch has a result
type BatchDoneMsg struct {
	Results []models.DownloadResult
	Elapsed time.Duration
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ResultMsg:
		m.done++
		m.logResult(msg.Result)
		return m, waitForMsg(m.results)

	case BatchDoneMsg:
		m.finishBatch(msg)
		return m, nil
	}

	return m, m.updateInputs(msg)
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.screen == ScreenRunning {
			m.cancelBatch()
			return m, nil
		}
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenMenu:
		return m.handleMenuKey(msg)

	case ScreenSingle:
		switch msg.Type {
		case tea.KeyEsc:
			return m.showMenu()
		case tea.KeyEnter:
			link := strings.TrimSpace(m.link.Value())
			if link == "" {
				m.notice = "Enter a pin link first"
				return m, nil
			}
			return m, m.startBatch([]string{link})
		}

	case ScreenMulti:
		switch msg.Type {
		case tea.KeyEsc:
			return m.showMenu()
		case tea.KeyCtrlD:
			links := pin.SplitLinks(m.links.Value())
			if len(links) == 0 {
				m.notice = "No links found in the pasted text"
				return m, nil
			}
			return m, m.startBatch(links)
		}

	case ScreenOutput:
		switch msg.Type {
		case tea.KeyEsc:
			return m.showMenu()
		case tea.KeyEnter:
			raw := strings.TrimSpace(m.folder.Value())
			if raw == "" {
				return m.showMenu()
			}
			dir, err := storage.PrepareDir(raw)
			if err != nil {
				m.notice = "Cannot use folder: " + err.Error()
				m.AddLogMessage("ERROR", "Cannot use folder "+raw)
				return m, nil
			}
			m.outputDir = dir
			m.folder.SetValue(dir)
			m.AddLogMessage("INFO", "Output folder set to "+dir)
			return m.showMenu()
		}

	case ScreenRunning:
		return m, nil

	case ScreenDone:
		switch msg.String() {
		case "q", "Q":
			return m, tea.Quit
		case "enter", "esc":
			return m.showMenu()
		}
		return m, nil
	}

	return m, m.updateInputs(msg)
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m.choose(menuItems[m.cursor].key)
	}
	for _, item := range menuItems {
		if msg.String() == item.key {
			return m.choose(item.key)
		}
	}
	return m, nil
}

// choose opens the screen behind a menu entry
func (m *Model) choose(key string) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch key {
	case "1":
		m.screen = ScreenSingle
		m.link.Reset()
		return m, m.link.Focus()
	case "2":
		m.screen = ScreenMulti
		m.links.Reset()
		return m, m.links.Focus()
	case "3":
		m.screen = ScreenOutput
		m.folder.SetValue(m.outputDir)
		return m, m.folder.Focus()
	case "4":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) showMenu() (tea.Model, tea.Cmd) {
	m.link.Blur()
	m.links.Blur()
	m.folder.Blur()
	m.screen = ScreenMenu
	m.notice = ""
	return m, nil
}

// updateInputs forwards a message to the focused input
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenSingle:
		m.link, cmd = m.link.Update(msg)
	case ScreenMulti:
		m.links, cmd = m.links.Update(msg)
	case ScreenOutput:
		m.folder, cmd = m.folder.Update(msg)
	}
	return cmd
}

// startBatch runs the links in the background and streams results back
// through a buffered channel so the runner never blocks on the UI.
func (m *Model) startBatch(links []string) tea.Cmd {
	m.link.Blur()
	m.links.Blur()
	m.screen = ScreenRunning
	m.notice = ""
	m.total = len(links)
	m.done = 0
	m.summary = nil
	m.startTime = time.Now()
	m.AddLogMessage("INFO", fmt.Sprintf("Downloading %d link(s) to %s", len(links), m.outputDir))

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	ch := make(chan tea.Msg, len(links)+1)
	m.results = ch
	runner, dir, start := m.runner, m.outputDir, m.startTime
	go func() {
		defer close(ch)
		results := runner(ctx, dir, links, func(r models.DownloadResult) {
			ch <- ResultMsg{Result: r}
		})
		ch <- BatchDoneMsg{Results: results, Elapsed: time.Since(start)}
	}()

	return waitForMsg(ch)
}

func (m *Model) cancelBatch() {
	if m.cancel != nil {
		m.cancel()
		m.AddLogMessage("WARN", "Cancelling, remaining links will be reported as failed")
	}
}

func (m *Model) finishBatch(msg BatchDoneMsg) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.results = nil
	m.done = len(msg.Results)
	m.summary = report.Summarize(msg.Results, msg.Elapsed)
	m.screen = ScreenDone
	m.AddLogMessage("INFO", m.summary.String())
	if m.onDone != nil {
		m.onDone(m.summary)
	}
}

// waitForMsg blocks on the batch channel for the next message
func waitForMsg(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
