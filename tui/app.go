// app.go is the top-level Bubble Tea model that hosts the views.
//
// Layout: a header with the connection and model, the active view inside
// a border, and a status bar with the key bindings. F1/F2 switch between
// the Ask and Schema views, ? toggles the help overlay.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const appVersion = "0.2.0"

// Tab indices.
const (
	TabAsk = iota
	TabSchema
)

// Info describes the session for the header bar.
type Info struct {
	Engine   string
	Database string
	Provider string
}

// App is the root Bubble Tea model.
type App struct {
	views     []View
	activeTab int
	info      Info

	width     int
	height    int
	showHelp  bool
	statusMsg string
}

// NewApp creates the application with the Ask view active.
func NewApp(ctx context.Context, asker Asker, schemas SchemaReader, info Info) *App {
	return &App{
		views: []View{
			NewAskView(ctx, asker),
			NewSchemaView(ctx, schemas),
		},
		activeTab: TabAsk,
		info:      info,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.views[a.activeTab].Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// header(1) + status(1) + border(2) = 4 lines of chrome
		for _, v := range a.views {
			v.SetSize(a.width-2, a.height-4)
		}
		return a, nil

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case SchemaMsg:
		return a.forward(TabSchema, msg)

	case StateMsg, SQLMsg, ResultMsg, AnswerMsg:
		return a.forward(TabAsk, msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "f1":
		return a.switchTab(TabAsk)
	case "f2":
		return a.switchTab(TabSchema)
	case "?":
		// The Ask view takes ? as part of a question.
		if a.activeTab != TabAsk || a.showHelp {
			a.showHelp = !a.showHelp
			return a, nil
		}
	}
	if a.showHelp {
		if msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}
	a.statusMsg = ""
	return a.forward(a.activeTab, msg)
}

// forward hands msg to the view at idx. Pipeline events go to the Ask
// view even when it is not the active tab.
func (a *App) forward(idx int, msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := a.views[idx].Update(msg)
	a.views[idx] = updated
	return a, cmd
}

func (a *App) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx == a.activeTab || idx < 0 || idx >= len(a.views) {
		return a, nil
	}
	a.activeTab = idx
	a.showHelp = false
	if idx == TabSchema {
		return a, a.views[idx].Init()
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var inner string
	if a.showHelp {
		inner = a.renderHelp()
	} else {
		inner = a.views[a.activeTab].View()
	}

	frameHeight := a.height - 4
	if frameHeight < 0 {
		frameHeight = 0
	}
	frame := StyleBorder.
		Width(a.width - 2).
		Height(frameHeight).
		Render(inner)

	return a.renderHeader() + "\n" + frame + "\n" + a.renderStatusBar()
}

// renderHeader draws logo, version, tabs and the session details.
func (a *App) renderHeader() string {
	left := StyleBold.Render("askSQL") + StyleDimmed.Render(" v"+appVersion) + "  "
	for i, v := range a.views {
		label := fmt.Sprintf("F%d %s", i+1, v.Name())
		if i == a.activeTab {
			left += StyleTabActive.Render(label)
		} else {
			left += StyleTabInactive.Render(label)
		}
	}

	right := StyleSuccess.Render(fmt.Sprintf("%s:%s", a.info.Engine, a.info.Database)) +
		StyleDimmed.Render("  "+a.info.Provider)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (a *App) renderStatusBar() string {
	if a.statusMsg != "" {
		return StyleStatusBar.Width(a.width).Render(StyleWarning.Render(a.statusMsg))
	}
	items := append(a.views[a.activeTab].ShortHelp(),
		KeyBinding{Key: "F1/F2", Desc: "switch view"},
		KeyBinding{Key: "Ctrl+C", Desc: "quit"},
	)
	var parts []string
	for _, h := range items {
		parts = append(parts, StyleHelpKey.Render(h.Key)+" "+StyleHelpDesc.Render(h.Desc))
	}
	return StyleStatusBar.Width(a.width).Render(strings.Join(parts, "  │  "))
}

func (a *App) renderHelp() string {
	help := []string{
		StyleTitle.Render("askSQL Keyboard Shortcuts"),
		"",
		StyleHelpKey.Render("F1") + "               Ask a question",
		StyleHelpKey.Render("F2") + "               Browse the schema",
		StyleHelpKey.Render("?") + "                Toggle this help (outside the Ask view)",
		StyleHelpKey.Render("Ctrl+C") + "           Quit",
		"",
		StyleTitle.Render("Ask"),
		"",
		StyleHelpKey.Render("Enter") + "            Send the question",
		StyleHelpKey.Render("Enter (empty)") + "    Quit",
		StyleHelpKey.Render("Ctrl+L") + "           Clear the transcript",
		StyleHelpKey.Render("PgUp/PgDn") + "        Scroll the transcript",
		"",
		StyleTitle.Render("Schema"),
		"",
		StyleHelpKey.Render("r") + "                Read the catalog again",
		StyleHelpKey.Render("↑/↓ j/k") + "          Scroll",
		"",
		StyleDimmed.Render("Press ? or Esc to close"),
	}

	return lipgloss.NewStyle().
		Width(a.width-4).
		Height(a.height-4).
		Padding(1, 2).
		Render(strings.Join(help, "\n"))
}
