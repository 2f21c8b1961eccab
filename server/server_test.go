package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/db"
)

type fakeAsker struct {
	out *assistant.Outcome
	err error
}

func (f fakeAsker) Ask(_ context.Context, question string, _ assistant.Hooks) (*assistant.Outcome, error) {
	if f.out != nil {
		f.out.Question = question
	}
	return f.out, f.err
}

type fakeSchemas struct {
	schema db.Schema
	err    error
}

func (f fakeSchemas) Inspect(context.Context) (db.Schema, error) {
	return f.schema, f.err
}

func newTestServer(asker Asker, schemas SchemaReader) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(asker, schemas, config.ServerConfig{Address: ":0"}, logger).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var decoded map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return rr, decoded
}

func TestAskReturnsAnswer(t *testing.T) {
	h := newTestServer(fakeAsker{out: &assistant.Outcome{
		SQL:    "SELECT SUM(new_cases) FROM data;",
		Result: &db.ResultTable{Columns: []string{"sum"}, Rows: [][]any{{105599.0}}},
		Answer: "There were 105599 new cases.",
	}}, fakeSchemas{})

	rr, body := doJSON(t, h, http.MethodPost, "/v1/ask", `{"question":"  how many new cases  "}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	if body["question"] != "how many new cases" || body["answer"] != "There were 105599 new cases." {
		t.Fatalf("body = %v", body)
	}
	rows, _ := body["rows"].([]any)
	if len(rows) != 1 || rows[0].([]any)[0] != 105599.0 {
		t.Fatalf("rows = %v", body["rows"])
	}
	if rr.Header().Get("X-Trace-ID") == "" {
		t.Fatal("expected trace header")
	}
}

func TestAskReportsStage(t *testing.T) {
	h := newTestServer(fakeAsker{
		out: &assistant.Outcome{SQL: "SELECT nope FROM data;"},
		err: &assistant.StageError{Stage: assistant.StageQueryExecution, Err: errors.New(`column "nope" does not exist`)},
	}, fakeSchemas{})

	rr, body := doJSON(t, h, http.MethodPost, "/v1/ask", `{"question":"q"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if body["stage"] != "query-execution" || body["sql"] != "SELECT nope FROM data;" {
		t.Fatalf("body = %v", body)
	}
}

func TestAskValidatesBody(t *testing.T) {
	h := newTestServer(fakeAsker{}, fakeSchemas{})
	for _, body := range []string{`not json`, `{"question":"   "}`} {
		rr, _ := doJSON(t, h, http.MethodPost, "/v1/ask", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rr.Code)
		}
	}
}

func TestSchema(t *testing.T) {
	h := newTestServer(fakeAsker{}, fakeSchemas{schema: db.Schema{Tables: []db.Table{
		{Name: "data", Columns: []db.Column{{Name: "iso_code", Type: "text"}}},
	}}})

	rr, body := doJSON(t, h, http.MethodGet, "/v1/schema", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if body["tableCount"] != 1.0 || body["text"] != "* data: (iso_code text)\n" {
		t.Fatalf("body = %v", body)
	}
}

func TestSchemaError(t *testing.T) {
	h := newTestServer(fakeAsker{}, fakeSchemas{err: errors.New("connection reset")})
	rr, body := doJSON(t, h, http.MethodGet, "/v1/schema", "")
	if rr.Code != http.StatusServiceUnavailable || body["error"] != "connection reset" {
		t.Fatalf("status = %d body = %v", rr.Code, body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(fakeAsker{}, fakeSchemas{})
	rr, body := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", rr.Code, body)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "asksql_http_requests_total") {
		t.Fatalf("metrics status = %d", rr.Code)
	}
}

func TestAskEncodesNonFiniteResult(t *testing.T) {
	rows := [][]any{{math.NaN()}}
	h := newTestServer(fakeAsker{out: &assistant.Outcome{
		SQL:    "SELECT 'NaN'::float8 AS x;",
		Result: &db.ResultTable{Columns: []string{"x"}, Rows: rows},
		Answer: "not a number",
	}}, fakeSchemas{})

	rr, body := doJSON(t, h, http.MethodPost, "/v1/ask", `{"question":"nan?"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "encode response") {
		t.Fatalf("body = %v", body)
	}
}

func TestAskRejectsOversizedBody(t *testing.T) {
	h := newTestServer(fakeAsker{out: &assistant.Outcome{Answer: "unused"}}, fakeSchemas{})
	payload := `{"question":"` + strings.Repeat("a", maxAskBody) + `"}`

	rr, body := doJSON(t, h, http.MethodPost, "/v1/ask", payload)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rr.Code)
	}
	if body["error"] != "request body too large" {
		t.Fatalf("body = %v", body)
	}
}
