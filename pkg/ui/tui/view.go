package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const logo = `┏━┓╻┏┓╻╻╺┳╸╺┳┓┏━┓╻ ╻┏┓╻
┣━┛┃┃┗┫┃ ┃  ┃┃┃ ┃┃╻┃┃┗┫
╹  ╹╹ ╹╹ ╹ ╺┻┛┗━┛┗┻┛╹ ╹`

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, logoStyle.Render(logo))

	switch m.screen {
	case ScreenMenu:
		sections = append(sections, m.renderMenu())
	case ScreenSingle:
		sections = append(sections, m.renderPrompt(" SINGLE PIN ", "Paste a pin link and press enter", m.link.View()))
	case ScreenMulti:
		sections = append(sections, m.renderPrompt(" MULTIPLE PINS ", "Paste links, then press ctrl+d to start", m.links.View()))
	case ScreenOutput:
		sections = append(sections, m.renderPrompt(" OUTPUT FOLDER ", "Folder for new downloads", m.folder.View()))
	case ScreenRunning:
		sections = append(sections, m.renderRunning())
	case ScreenDone:
		sections = append(sections, m.renderSummary())
	}

	if m.notice != "" {
		sections = append(sections, warningStyle.PaddingLeft(2).Render(m.notice))
	}
	sections = append(sections, m.renderLogsPanel(m.panelWidth()))
	sections = append(sections, helpStyle.Render(m.helpText()))
	sections = append(sections, statusBarStyle.Render("Output: "+m.outputDir))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) panelWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

// renderMenu renders the numbered main menu
func (m *Model) renderMenu() string {
	title := titleStyle.Render(" MENU ")

	items := make([]string, 0, len(menuItems))
	for i, item := range menuItems {
		line := fmt.Sprintf("%s) %s", item.key, item.label)
		if i == m.cursor {
			items = append(items, menuSelectedStyle.Render("▸ "+line))
		} else {
			items = append(items, menuItemStyle.Render("  "+line))
		}
	}

	return panelStyle.Width(m.panelWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(items, "\n")),
	)
}

func (m *Model) renderPrompt(title, hint, input string) string {
	return panelStyle.Width(m.panelWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			statsValueStyle.Render(hint),
			"",
			input,
		),
	)
}

// renderRunning shows the spinner and batch progress
func (m *Model) renderRunning() string {
	title := titleStyle.Render(" DOWNLOADING ")

	status := fmt.Sprintf("%s %s %s",
		m.spinner.View(),
		statsLabelStyle.Render("Processed:"),
		statsValueStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total)),
	)
	elapsed := fmt.Sprintf("%s %s",
		statsLabelStyle.Render("Elapsed:"),
		statsValueStyle.Render(formatDuration(time.Since(m.startTime))),
	)

	return panelStyle.Width(m.panelWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, status, m.progress.ViewAs(m.percent()), elapsed),
	)
}

// renderSummary shows the totals of the last batch
func (m *Model) renderSummary() string {
	title := titleStyle.Render(" SUMMARY ")
	s := m.summary
	if s == nil {
		return panelStyle.Width(m.panelWidth()).Render(title)
	}

	lines := []string{
		fmt.Sprintf("%s %s", successStyle.Render("✓ Succeeded:"), statsValueStyle.Render(fmt.Sprint(s.Succeeded))),
		fmt.Sprintf("%s %s", warningStyle.Render("∅ No asset:"), statsValueStyle.Render(fmt.Sprint(s.NoAsset))),
		fmt.Sprintf("%s %s", errorStyle.Render("✗ Failed:"), statsValueStyle.Render(fmt.Sprint(s.Failed))),
		fmt.Sprintf("%s %s in %s",
			statsLabelStyle.Render("Saved:"),
			statsValueStyle.Render(humanize.Bytes(uint64(s.Bytes))),
			statsValueStyle.Render(formatDuration(s.Elapsed)),
		),
	}

	return panelStyle.Width(m.panelWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")),
	)
}

// renderLogsPanel renders the result log pane
func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	rows := m.height - 24
	if rows < 5 {
		rows = 5
	}
	start := len(m.logMessages) - rows
	if start < 0 {
		start = 0
	}

	maxMsgLen := width - 24
	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := log.Message
		if maxMsgLen > 3 && len(message) > maxMsgLen {
			message = message[:maxMsgLen-3] + "..."
		}
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("Nothing downloaded yet")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) helpText() string {
	switch m.screen {
	case ScreenMenu:
		return "↑/↓ or 1-4 to choose • enter to select • q to quit"
	case ScreenSingle, ScreenOutput:
		return "enter to confirm • esc to go back"
	case ScreenMulti:
		return "ctrl+d to start • esc to go back"
	case ScreenRunning:
		return "ctrl+c to cancel"
	case ScreenDone:
		return "enter to return to the menu • q to quit"
	}
	return ""
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
