// view_schema.go shows the tables and columns the questions are grounded on.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DachengChen/askSQL/db"
)

// SchemaReader reads the live catalog.
type SchemaReader interface {
	Inspect(ctx context.Context) (db.Schema, error)
}

type SchemaView struct {
	ctx      context.Context
	reader   SchemaReader
	viewport *Viewport
	loading  bool
	err      error
	width    int
	height   int
}

func NewSchemaView(ctx context.Context, reader SchemaReader) *SchemaView {
	return &SchemaView{
		ctx:      ctx,
		reader:   reader,
		viewport: NewViewport(80, 20),
	}
}

func (v *SchemaView) Name() string { return "Schema" }

func (v *SchemaView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.SetSize(width-2, height-2)
}

func (v *SchemaView) ShortHelp() []KeyBinding {
	return []KeyBinding{
		{Key: "r", Desc: "refresh"},
		{Key: "↑/↓", Desc: "scroll"},
	}
}

func (v *SchemaView) Init() tea.Cmd {
	v.loading = true
	ctx, reader := v.ctx, v.reader
	return func() tea.Msg {
		schema, err := reader.Inspect(ctx)
		return SchemaMsg{Schema: schema, Err: err}
	}
}

func (v *SchemaView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case SchemaMsg:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.viewport.SetContentLines(renderSchema(msg.Schema))
			v.viewport.Home()
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return v, v.Init()
		case "up", "k":
			v.viewport.ScrollUp(1)
		case "down", "j":
			v.viewport.ScrollDown(1)
		case "pgup":
			v.viewport.PageUp()
		case "pgdown":
			v.viewport.PageDown()
		}
	}
	return v, nil
}

func (v *SchemaView) View() string {
	title := StyleTitle.Render("Schema")
	switch {
	case v.loading:
		return lipgloss.JoinVertical(lipgloss.Left, title, StyleDimmed.Render("reading catalog..."))
	case v.err != nil:
		return lipgloss.JoinVertical(lipgloss.Left, title, StyleError.Render("ERROR: ")+v.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, v.viewport.Render())
}

func renderSchema(s db.Schema) []string {
	if len(s.Tables) == 0 {
		return []string{StyleDimmed.Render("(no tables found)")}
	}
	var lines []string
	for _, t := range s.Tables {
		lines = append(lines, StyleBold.Render(t.Name)+StyleDimmed.Render(fmt.Sprintf("  %d columns", len(t.Columns))))
		for _, c := range t.Columns {
			lines = append(lines, "  "+c.Name+"  "+StyleDimmed.Render(c.Type))
		}
		lines = append(lines, "")
	}
	return lines
}
