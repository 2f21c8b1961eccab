package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/DachengChen/askSQL/ai"
	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/db"
)

const weeklyQuestion = "how many new cases in the united states in the past week"

const weeklySQL = "SELECT SUM(new_cases) FROM data WHERE iso_code = 'USA' AND date > NOW() - INTERVAL '7 days';"

type fakeDB struct {
	schema     db.Schema
	result     *db.ResultTable
	inspectErr error
	execErr    error

	inspectCalls int
	executed     []string
}

func (f *fakeDB) Inspect(context.Context) (db.Schema, error) {
	f.inspectCalls++
	return f.schema, f.inspectErr
}

func (f *fakeDB) Execute(_ context.Context, query string) (*db.ResultTable, error) {
	f.executed = append(f.executed, query)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.result, nil
}

// scriptedCompleter answers SQL prompts with sql and answer prompts by
// quoting the last line of the result block it was given.
type scriptedCompleter struct {
	sql       string
	sqlErr    error
	answerErr error
	requests  []ai.Request
}

func (s *scriptedCompleter) Name() string { return "scripted" }

func (s *scriptedCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.requests = append(s.requests, req)
	if strings.HasSuffix(req.Prompt, "```sql") {
		return s.sql, s.sqlErr
	}
	if s.answerErr != nil {
		return "", s.answerErr
	}
	block := req.Prompt[strings.LastIndex(req.Prompt, "Result:\n```\n")+len("Result:\n```\n"):]
	block = block[:strings.Index(block, "\n```")]
	lines := strings.Split(block, "\n")
	fields := strings.Fields(lines[len(lines)-1])
	return "The result is " + fields[len(fields)-1] + ".", nil
}

func owidSchema() db.Schema {
	return db.Schema{Tables: []db.Table{
		{Name: "data", Columns: []db.Column{
			{Name: "iso_code", Type: "text"},
			{Name: "date", Type: "timestamp without time zone"},
			{Name: "new_cases", Type: "double precision"},
		}},
	}}
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.AI.SQLModel = "code-davinci-002"
	cfg.AI.AnswerModel = "text-davinci-003"
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildListsEveryNameOnce(t *testing.T) {
	schema := db.Schema{Tables: []db.Table{
		{Name: "hospital_stats", Columns: []db.Column{{Name: "icu_patients", Type: "bigint"}, {Name: "region_code", Type: "text"}}},
		{Name: "weekly_admissions", Columns: []db.Column{{Name: "admitted_on", Type: "date"}}},
	}}
	b := &Builder{Templates: Inline{}, Dialect: "PostgreSQL"}

	prompt, err := b.Build(schema, "how many icu patients are there")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, name := range []string{"hospital_stats", "region_code", "weekly_admissions", "admitted_on"} {
		if n := strings.Count(prompt, name); n != 1 {
			t.Fatalf("%q appears %d times in prompt", name, n)
		}
	}
	if !strings.Contains(prompt, "* hospital_stats: (icu_patients bigint, region_code text)\n") {
		t.Fatalf("schema block missing from prompt:\n%s", prompt)
	}
	if !strings.HasSuffix(prompt, "\nInput:\nhow many icu patients are there\nOutput:\n```sql") {
		t.Fatalf("prompt suffix = %q", prompt[len(prompt)-80:])
	}
	for _, placeholder := range []string{"$database_info", "$examples", "$dialect"} {
		if strings.Contains(prompt, placeholder) {
			t.Fatalf("placeholder %s left in prompt", placeholder)
		}
	}
	if !strings.Contains(prompt, "PostgreSQL") {
		t.Fatal("dialect missing from prompt")
	}
}

func writeTemplates(t *testing.T, dir, sqlTemplate string) {
	t.Helper()
	files := map[string]string{
		SQLTemplate:      sqlTemplate,
		ExamplesTemplate: "EXAMPLES",
		ResultsTemplate:  "Q=$question\nS=$query\nR=$results",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
}

func TestBuildReloadsTemplateDirEveryTime(t *testing.T) {
	dir := t.TempDir()
	writeTemplates(t, dir, "v1 $dialect\n$database_info$examples")
	b := &Builder{Templates: Dir(dir), Dialect: "DuckDB"}

	first, err := b.Build(owidSchema(), "q")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.HasPrefix(first, "v1 DuckDB\n* data:") || !strings.Contains(first, "EXAMPLES") {
		t.Fatalf("first prompt = %q", first)
	}

	writeTemplates(t, dir, "v2 $dialect")
	second, err := b.Build(owidSchema(), "q")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if second != "v2 DuckDB\nInput:\nq\nOutput:\n```sql" {
		t.Fatalf("second prompt = %q", second)
	}
}

func TestBuildMissingTemplate(t *testing.T) {
	b := &Builder{Templates: Dir(t.TempDir())}
	if _, err := b.Build(owidSchema(), "q"); err == nil || !strings.Contains(err.Error(), SQLTemplate) {
		t.Fatalf("Build() error = %v", err)
	}
}

func TestComposeIncludesQuestionQueryAndResult(t *testing.T) {
	completer := &scriptedCompleter{}
	c := &Composer{Templates: Inline{}, Completer: completer, Model: "text-davinci-003", Temperature: 0.7, MaxTokens: 256}
	result := &db.ResultTable{Columns: []string{"sum"}, Rows: [][]any{{105599.0}}}

	answer, prompt, err := c.Compose(context.Background(), weeklyQuestion, weeklySQL, result)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	for _, want := range []string{weeklyQuestion, weeklySQL, result.String()} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("answer prompt missing %q:\n%s", want, prompt)
		}
	}
	if answer != "The result is 105599." {
		t.Fatalf("answer = %q", answer)
	}
	req := completer.requests[0]
	if req.Model != "text-davinci-003" || req.MaxTokens != 256 || req.Stop != "```" || req.Temperature != 0.7 {
		t.Fatalf("request = %+v", req)
	}
}

func TestComposeRendersEmptyResult(t *testing.T) {
	c := &Composer{Templates: Inline{}}
	prompt, err := c.Render("q", "SELECT 1 WHERE false", &db.ResultTable{Columns: []string{"x"}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(prompt, "Empty result\nColumns: [x]") {
		t.Fatalf("prompt = %q", prompt)
	}
}

func TestAskEndToEnd(t *testing.T) {
	database := &fakeDB{
		schema: owidSchema(),
		result: &db.ResultTable{Columns: []string{"sum"}, Rows: [][]any{{105599.0}}},
	}
	completer := &scriptedCompleter{sql: weeklySQL}
	p := New(database, testConfig(), completer, discardLogger())

	var states []State
	var seenSQL string
	var seenResult *db.ResultTable
	out, err := p.Ask(context.Background(), weeklyQuestion, Hooks{
		OnState:  func(s State) { states = append(states, s) },
		OnSQL:    func(q string) { seenSQL = q },
		OnResult: func(r *db.ResultTable) { seenResult = r },
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(out.Answer, "105599") {
		t.Fatalf("answer = %q", out.Answer)
	}
	if !reflect.DeepEqual(database.executed, []string{weeklySQL}) {
		t.Fatalf("executed = %v", database.executed)
	}
	if seenSQL != weeklySQL || seenResult != database.result {
		t.Fatalf("hooks saw %q / %v", seenSQL, seenResult)
	}
	wantStates := []State{Building, Generating, Executing, Composing, Reporting}
	if !reflect.DeepEqual(states, wantStates) {
		t.Fatalf("states = %v, want %v", states, wantStates)
	}

	if len(completer.requests) != 2 {
		t.Fatalf("model calls = %d", len(completer.requests))
	}
	sqlReq, answerReq := completer.requests[0], completer.requests[1]
	if sqlReq.Model != "code-davinci-002" || sqlReq.MaxTokens != 512 || sqlReq.Stop != "```" || sqlReq.Temperature != 0.7 {
		t.Fatalf("sql request = %+v", sqlReq)
	}
	if answerReq.Model != "text-davinci-003" || answerReq.MaxTokens != 256 {
		t.Fatalf("answer request = %+v", answerReq)
	}
	if out.Prompt != sqlReq.Prompt || out.AnswerPrompt != answerReq.Prompt {
		t.Fatal("outcome prompts do not match the prompts sent")
	}
}

func TestAskTagsFailingStage(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name      string
		database  *fakeDB
		completer *scriptedCompleter
		promptDir string
		want      Stage
		execCalls int
	}{
		{
			name:      "schema read",
			database:  &fakeDB{inspectErr: boom},
			completer: &scriptedCompleter{sql: "SELECT 1;"},
			want:      StageSchemaRead,
		},
		{
			name:      "prompt build",
			database:  &fakeDB{schema: owidSchema()},
			completer: &scriptedCompleter{sql: "SELECT 1;"},
			promptDir: "missing",
			want:      StagePromptBuild,
		},
		{
			name:      "model call",
			database:  &fakeDB{schema: owidSchema()},
			completer: &scriptedCompleter{sqlErr: boom},
			want:      StageModelCall,
		},
		{
			name:      "query execution",
			database:  &fakeDB{schema: owidSchema(), execErr: boom},
			completer: &scriptedCompleter{sql: "SELECT nope;"},
			want:      StageQueryExecution,
			execCalls: 1,
		},
		{
			name:      "answer compose",
			database:  &fakeDB{schema: owidSchema(), result: &db.ResultTable{Columns: []string{"n"}, Rows: [][]any{{int64(1)}}}},
			completer: &scriptedCompleter{sql: "SELECT 1;", answerErr: boom},
			want:      StageAnswerCompose,
			execCalls: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			if tc.promptDir != "" {
				cfg.Prompt.Dir = filepath.Join(t.TempDir(), tc.promptDir)
			}
			p := New(tc.database, cfg, tc.completer, discardLogger())

			_, err := p.Ask(context.Background(), "q", Hooks{})
			if got := StageOf(err); got != tc.want {
				t.Fatalf("StageOf(%v) = %q, want %q", err, got, tc.want)
			}
			if !strings.HasPrefix(err.Error(), string(tc.want)+": ") {
				t.Fatalf("error text = %q", err.Error())
			}
			if len(tc.database.executed) != tc.execCalls {
				t.Fatalf("executed = %v", tc.database.executed)
			}
		})
	}
}

func TestAskRecoversAfterExecutionFailure(t *testing.T) {
	database := &fakeDB{schema: owidSchema(), execErr: errors.New(`relation "nope" does not exist`)}
	completer := &scriptedCompleter{sql: "SELECT * FROM nope;"}
	p := New(database, testConfig(), completer, discardLogger())

	if _, err := p.Ask(context.Background(), "first", Hooks{}); StageOf(err) != StageQueryExecution {
		t.Fatalf("first Ask() error = %v", err)
	}

	database.execErr = nil
	database.result = &db.ResultTable{Columns: []string{"count"}, Rows: [][]any{{int64(42)}}}
	out, err := p.Ask(context.Background(), "second", Hooks{})
	if err != nil {
		t.Fatalf("second Ask() error = %v", err)
	}
	if out.Answer != "The result is 42." {
		t.Fatalf("answer = %q", out.Answer)
	}
	if database.inspectCalls != 2 {
		t.Fatalf("schema should be read for every question, got %d reads", database.inspectCalls)
	}
}

func TestStageErrorUnwraps(t *testing.T) {
	boom := errors.New("connection refused")
	err := error(&StageError{Stage: StageModelCall, Err: boom})
	if !errors.Is(err, boom) {
		t.Fatal("errors.Is should see the wrapped error")
	}
	if StageOf(boom) != "" {
		t.Fatal("untagged error should have no stage")
	}
}

func TestWriteDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ResultsTemplate), []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := WriteDefaults(dir)
	if err != nil {
		t.Fatalf("WriteDefaults() error = %v", err)
	}
	if !reflect.DeepEqual(written, []string{SQLTemplate, ExamplesTemplate}) {
		t.Fatalf("written = %v", written)
	}
	body, err := Dir(dir).Load(ResultsTemplate)
	if err != nil || body != "mine" {
		t.Fatalf("existing template overwritten: %q, %v", body, err)
	}
}
