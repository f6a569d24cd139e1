// Package tui provides a terminal user interface for vox2osu
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/okawaffles/vox2osu/pkg/converter"
	"github.com/okawaffles/vox2osu/pkg/converter/targets"
)

// theme holds the styles of every screen
type theme struct {
	title  lipgloss.Style
	item   lipgloss.Style
	active lipgloss.Style
	accent lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	help   lipgloss.Style
	panel  lipgloss.Style
}

func newTheme() theme {
	cyan := lipgloss.Color("#00E5FF")
	pink := lipgloss.Color("#FF3FD0")
	return theme{
		title:  lipgloss.NewStyle().Bold(true).Foreground(cyan).Background(lipgloss.Color("#333333")).Padding(0, 2),
		item:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).PaddingLeft(2),
		active: lipgloss.NewStyle().Foreground(cyan).Bold(true).PaddingLeft(2),
		accent: lipgloss.NewStyle().Foreground(pink),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		help:   lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).MarginTop(1),
		panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(pink).Padding(1, 2),
	}
}

var styles = newTheme()

// maxListedDiagnostics bounds the diagnostics shown on the result screen
const maxListedDiagnostics = 5

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// MenuItem is one conversion offered by the menu
type MenuItem struct {
	Title       string
	Description string
	Target      string // empty for the exit item
	Keys        int
}

var menuItems = []MenuItem{
	{Title: "VOX → OSU (4K)", Description: "Convert BT lanes to a 4 key osu!mania beatmap", Target: "osu", Keys: 4},
	{Title: "VOX → OSU (6K)", Description: "Convert BT and FX lanes to a 6 key osu!mania beatmap", Target: "osu", Keys: 6},
	{Title: "VOX → MIDI", Description: "Export a MIDI preview with the chart's tempo map", Target: "midi", Keys: 6},
	{Title: "Exit", Description: "Exit the application"},
}

// Model is the bubbletea model of the converter UI
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	opts         converter.Options
	conversion   MenuItem
	selectedFile string
	outputFile   string
	chart        *converter.Chart
	err          error
}

type conversionDoneMsg struct {
	outputFile string
	chart      *converter.Chart
	err        error
}

// New creates a model converting with opts
func New(opts converter.Options) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".vox"}
	fp.CurrentDirectory, _ = os.Getwd()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.accent))

	return Model{state: StateMenu, filePicker: fp, spinner: sp, opts: opts}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update routes messages to the handler of the current screen
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile, m.chart, m.err = msg.outputFile, msg.chart, msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.filePicker.SetHeight(max(msg.Height-10, 5))
	}

	switch m.state {
	case StateMenu:
		if key, ok := msg.(tea.KeyMsg); ok {
			return m.updateMenu(key)
		}
	case StateFilePicker:
		return m.updateFilePicker(msg)
	case StateResult:
		if key, ok := msg.(tea.KeyMsg); ok {
			return m.updateResult(key)
		}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.menuIndex = max(m.menuIndex-1, 0)
	case "down", "j":
		m.menuIndex = min(m.menuIndex+1, len(menuItems)-1)
	case "enter":
		item := menuItems[m.menuIndex]
		if item.Target == "" {
			return m, tea.Quit
		}
		m.conversion = item
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// updateFilePicker forwards everything but the exit keys to the picker
func (m Model) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.state = StateMenu
			return m, nil
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)
	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		m.selectedFile = path
		m.state = StateConverting
		item, opts := m.conversion, m.opts
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return convert(path, item, opts) })
	}
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		return Model{state: StateMenu, filePicker: m.filePicker, spinner: m.spinner, opts: m.opts, menuIndex: m.menuIndex}, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func convert(input string, item MenuItem, opts converter.Options) conversionDoneMsg {
	opts.Keys = item.Keys
	target, err := targets.ByName(item.Target, opts.Resources)
	if err != nil {
		return conversionDoneMsg{err: err}
	}

	outputFile := converter.OutputPath(input, target.Format())
	chart, err := converter.New(target, opts).ConvertFile(input, outputFile)
	if err != nil {
		return conversionDoneMsg{err: err}
	}
	return conversionDoneMsg{outputFile: outputFile, chart: chart}
}

func (m Model) View() string {
	var body string
	switch m.state {
	case StateMenu:
		body = panel("SELECT CONVERSION", m.viewMenu())
	case StateFilePicker:
		body = styles.title.Render("SELECT VOX FILE") + "\n\n" + m.filePicker.View() + "\n" + styles.help.Render("esc: back to menu")
	case StateConverting:
		body = panel("CONVERTING", fmt.Sprintf("%s Converting %s...\n\n%s",
			m.spinner.View(), filepath.Base(m.selectedFile), styles.accent.Render(m.conversion.Title)))
	case StateResult:
		body = m.viewResult()
	}
	return banner() + "\n" + body + "\n" + styles.help.Render("↑/↓: navigate • enter: select • q: quit")
}

// panel renders a titled, bordered box
func panel(title, body string) string {
	return styles.panel.Render(styles.title.Render(title) + "\n\n" + body)
}

func (m Model) viewMenu() string {
	lines := make([]string, 0, len(menuItems)+1)
	for i, item := range menuItems {
		if i != m.menuIndex {
			lines = append(lines, styles.item.Render("  "+item.Title))
			continue
		}
		lines = append(lines,
			styles.active.Render("▸ "+item.Title),
			styles.accent.PaddingLeft(4).Render(item.Description))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewResult() string {
	if m.err != nil {
		return panel("ERROR", styles.fail.Render("✗ Conversion failed: "+m.err.Error())+"\n\n"+styles.help.Render("Press enter to continue"))
	}

	var s strings.Builder
	s.WriteString(styles.active.UnsetPaddingLeft().Render("✓ Conversion complete!"))
	fmt.Fprintf(&s, "\n\nInput:  %s\nOutput: %s", filepath.Base(m.selectedFile), filepath.Base(m.outputFile))
	if ch := m.chart; ch != nil {
		fmt.Fprintf(&s, "\nNotes:  %d across %d timing points, %d pause(s)", len(ch.Objects), len(ch.TimingPoints), len(ch.Pauses))
		for _, lane := range ch.Layout {
			fmt.Fprintf(&s, "\n  %-5s %d", lane, ch.LaneCounts[lane])
		}
		s.WriteString(viewDiagnostics(ch.Diagnostics))
	}
	s.WriteString("\n\n" + styles.help.Render("Press enter to continue"))
	return panel("SUCCESS", s.String())
}

func viewDiagnostics(diags converter.Diagnostics) string {
	if len(diags) == 0 {
		return ""
	}
	var s strings.Builder
	s.WriteString("\n\n" + styles.warn.Render(fmt.Sprintf("%d warning(s)", len(diags))))
	for i, d := range diags {
		if i == maxListedDiagnostics {
			fmt.Fprintf(&s, "\n  … %d more", len(diags)-i)
			break
		}
		s.WriteString("\n  " + d.String())
	}
	return s.String()
}

func banner() string {
	return styles.title.Bold(true).MarginBottom(1).Render("vox2osu ▸ VOX charts to osu!mania and MIDI")
}

// Run starts the TUI application
func Run(opts converter.Options) error {
	_, err := tea.NewProgram(New(opts), tea.WithAltScreen()).Run()
	return err
}
