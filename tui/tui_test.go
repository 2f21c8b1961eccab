package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/db"
)

type fakeAsker struct {
	questions []string
	err       error
}

func (f *fakeAsker) Ask(_ context.Context, question string, hooks assistant.Hooks) (*assistant.Outcome, error) {
	f.questions = append(f.questions, question)
	hooks.OnState(assistant.Generating)
	hooks.OnSQL("SELECT sum(new_cases) FROM data;")
	if f.err != nil {
		return nil, f.err
	}
	result := &db.ResultTable{Columns: []string{"sum"}, Rows: [][]any{{int64(105599)}}}
	hooks.OnResult(result)
	return &assistant.Outcome{Question: question, Result: result, Answer: "There were 105599 new cases."}, nil
}

type fakeSchemas struct {
	schema db.Schema
	err    error
}

func (f fakeSchemas) Inspect(context.Context) (db.Schema, error) {
	return f.schema, f.err
}

func typeText(t *testing.T, app *App, text string) {
	t.Helper()
	for _, r := range text {
		if r == ' ' {
			app.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// drain runs cmd and every command it produces until the chain ends,
// feeding each message back into the app.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 50 {
			t.Fatal("command chain did not finish")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = app.Update(msg)
	}
}

func newTestApp(asker Asker, schemas SchemaReader) *App {
	app := NewApp(context.Background(), asker, schemas, Info{Engine: "postgres", Database: "owid", Provider: "placeholder"})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return app
}

func TestAskShowsSQLResultAndAnswer(t *testing.T) {
	asker := &fakeAsker{}
	app := newTestApp(asker, fakeSchemas{})
	app.Init()

	typeText(t, app, "how many cases?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	if len(asker.questions) != 1 || asker.questions[0] != "how many cases?" {
		t.Fatalf("questions = %q", asker.questions)
	}
	ask := app.views[TabAsk].(*AskView)
	if ask.Busy() {
		t.Fatal("view still busy after the answer arrived")
	}
	transcript := strings.Join(ask.lines, "\n")
	for _, want := range []string{"how many cases?", "SELECT sum(new_cases) FROM data;", "105599", "There were 105599 new cases."} {
		if !strings.Contains(transcript, want) {
			t.Fatalf("transcript missing %q:\n%s", want, transcript)
		}
	}
	if ask.input != "" {
		t.Fatalf("input = %q, want cleared", ask.input)
	}
}

func TestAskShowsError(t *testing.T) {
	asker := &fakeAsker{err: &assistant.StageError{Stage: assistant.StageQueryExecution, Err: errors.New("column \"x\" does not exist")}}
	app := newTestApp(asker, fakeSchemas{})
	app.Init()

	typeText(t, app, "bad")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, app, cmd)

	transcript := strings.Join(app.views[TabAsk].(*AskView).lines, "\n")
	if !strings.Contains(transcript, "query-execution: column \"x\" does not exist") {
		t.Fatalf("transcript = %s", transcript)
	}
}

func TestEmptyQuestionQuits(t *testing.T) {
	asker := &fakeAsker{}
	app := newTestApp(asker, fakeSchemas{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("empty question should quit")
	}
	if len(asker.questions) != 0 {
		t.Fatalf("questions = %q", asker.questions)
	}
}

func TestSchemaViewLoadsOnSwitch(t *testing.T) {
	schema := db.Schema{Tables: []db.Table{{Name: "data", Columns: []db.Column{{Name: "iso_code", Type: "text"}}}}}
	app := newTestApp(&fakeAsker{}, fakeSchemas{schema: schema})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyF2})
	if app.activeTab != TabSchema {
		t.Fatalf("activeTab = %d", app.activeTab)
	}
	drain(t, app, cmd)

	view := app.View()
	if !strings.Contains(view, "data") || !strings.Contains(view, "iso_code") {
		t.Fatalf("schema view = %s", view)
	}
}

func TestSchemaViewShowsError(t *testing.T) {
	app := newTestApp(&fakeAsker{}, fakeSchemas{err: errors.New("connection refused")})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyF2})
	drain(t, app, cmd)

	if !strings.Contains(app.View(), "connection refused") {
		t.Fatalf("view = %s", app.View())
	}
}

func TestRenderResultCapsRows(t *testing.T) {
	r := &db.ResultTable{Columns: []string{"n"}}
	for i := 0; i < maxTableRows+5; i++ {
		r.Rows = append(r.Rows, []any{int64(i)})
	}
	out := renderResult(r)
	if !strings.Contains(out, "5 more rows") {
		t.Fatalf("renderResult() = %s", out)
	}
}

func TestViewportScrolling(t *testing.T) {
	v := NewViewport(10, 2)
	v.SetContentLines([]string{"a", "b\nc", "d"})
	if got := v.Render(); !strings.HasPrefix(got, "a\nb") {
		t.Fatalf("Render() = %q", got)
	}
	v.End()
	if got := v.Render(); !strings.HasPrefix(got, "c\nd") {
		t.Fatalf("Render() after End = %q", got)
	}
	v.ScrollDown(10)
	v.Home()
	if got := v.Render(); !strings.HasPrefix(got, "a") {
		t.Fatalf("Render() after Home = %q", got)
	}
}
