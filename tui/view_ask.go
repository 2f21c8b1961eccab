// view_ask.go is the question/answer view.
//
// Each question runs the full pipeline in the background. Hook events
// arrive as messages over a channel so the transcript shows the SQL and
// the result table before the answer is ready.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/db"
)

// maxTableRows caps how many result rows the transcript shows.
const maxTableRows = 20

// Asker answers one question. *assistant.Pipeline satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string, hooks assistant.Hooks) (*assistant.Outcome, error)
}

type AskView struct {
	ctx      context.Context
	asker    Asker
	viewport *Viewport
	input    string
	lines    []string
	state    assistant.State
	events   chan tea.Msg
	width    int
	height   int
}

func NewAskView(ctx context.Context, asker Asker) *AskView {
	return &AskView{
		ctx:      ctx,
		asker:    asker,
		viewport: NewViewport(80, 20),
	}
}

func (v *AskView) Name() string { return "Ask" }

func (v *AskView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.SetSize(width-2, height-3)
}

func (v *AskView) ShortHelp() []KeyBinding {
	return []KeyBinding{
		{Key: "Enter", Desc: "ask (empty quits)"},
		{Key: "Ctrl+L", Desc: "clear"},
		{Key: "PgUp/PgDn", Desc: "scroll"},
	}
}

func (v *AskView) Init() tea.Cmd {
	if len(v.lines) == 0 {
		v.lines = []string{
			StyleTitle.Render("Ask a question about your data"),
			StyleDimmed.Render("The question is turned into SQL, run against the live schema and answered in a sentence."),
			StyleDimmed.Render("Press Enter on an empty line to quit."),
			"",
		}
	}
	v.viewport.SetContentLines(v.lines)
	return nil
}

// Busy reports whether a question is in flight.
func (v *AskView) Busy() bool {
	return v.events != nil
}

func (v *AskView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case StateMsg:
		v.state = msg.State
		return v, v.next()

	case SQLMsg:
		v.appendLines(StyleDimmed.Render("Generated SQL:"))
		for _, line := range strings.Split(msg.SQL, "\n") {
			v.appendLines("  " + StyleSQL.Render(line))
		}
		return v, v.next()

	case ResultMsg:
		v.appendLines(StyleDimmed.Render("Result "+msg.Result.Status()+":"), renderResult(msg.Result))
		return v, v.next()

	case AnswerMsg:
		v.events = nil
		v.state = assistant.AwaitingQuestion
		if msg.Err != nil {
			v.appendLines(StyleError.Render("ERROR: ")+msg.Err.Error(), "")
		} else {
			v.appendLines(StyleSuccess.Render("ANSWER: ")+msg.Outcome.Answer, "")
		}
		return v, nil
	}
	return v, nil
}

func (v *AskView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if v.Busy() {
			return v, nil
		}
		question := strings.TrimSpace(v.input)
		if question == "" {
			return v, tea.Quit
		}
		v.input = ""
		return v, v.ask(question)
	case "ctrl+l":
		v.lines = nil
		return v, v.Init()
	case "pgup":
		v.viewport.PageUp()
	case "pgdown":
		v.viewport.PageDown()
	case "up":
		v.viewport.ScrollUp(1)
	case "down":
		v.viewport.ScrollDown(1)
	case "backspace":
		if r := []rune(v.input); len(r) > 0 {
			v.input = string(r[:len(r)-1])
		}
	default:
		if msg.Type == tea.KeyRunes {
			v.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			v.input += " "
		}
	}
	return v, nil
}

func (v *AskView) ask(question string) tea.Cmd {
	v.appendLines(StylePrompt.Render("QUESTION: ") + question)
	v.state = assistant.Building

	events := make(chan tea.Msg, 16)
	v.events = events
	ctx, asker := v.ctx, v.asker
	go func() {
		defer close(events)
		out, err := asker.Ask(ctx, question, assistant.Hooks{
			OnState:  func(s assistant.State) { events <- StateMsg{State: s} },
			OnSQL:    func(q string) { events <- SQLMsg{SQL: q} },
			OnResult: func(r *db.ResultTable) { events <- ResultMsg{Result: r} },
		})
		events <- AnswerMsg{Outcome: out, Err: err}
	}()
	return v.next()
}

// next waits for the following pipeline event.
func (v *AskView) next() tea.Cmd {
	events := v.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (v *AskView) appendLines(lines ...string) {
	v.lines = append(v.lines, lines...)
	v.viewport.SetContentLines(v.lines)
	v.viewport.End()
}

func (v *AskView) View() string {
	prompt := StylePrompt.Render("QUESTION: ") + v.input + "█"
	if v.Busy() {
		prompt = StylePrompt.Render("QUESTION: ") + StyleDimmed.Render(v.state.String()+"...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, prompt, "", v.viewport.Render())
}

// renderResult draws the result as a bordered table, capped at
// maxTableRows rows.
func renderResult(r *db.ResultTable) string {
	if len(r.Columns) == 0 {
		return StyleDimmed.Render("(no columns)")
	}
	cells := r.Cells()
	more := 0
	if len(cells) > maxTableRows {
		more = len(cells) - maxTableRows
		cells = cells[:maxTableRows]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSecondary)).
		Headers(r.Columns...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTableHeader
			}
			return StyleTableCell
		})

	out := t.String()
	if more > 0 {
		out += "\n" + StyleDimmed.Render(fmt.Sprintf("… %d more rows", more))
	}
	return out
}
