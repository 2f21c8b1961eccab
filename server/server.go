// Package server exposes the assistant over HTTP:
//
//	POST /v1/ask     {"question": "..."} -> sql, result and answer
//	GET  /v1/schema  the live schema description
//	GET  /healthz    liveness
//	GET  /metrics    Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DachengChen/askSQL/assistant"
	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/db"
	"github.com/DachengChen/askSQL/metrics"
)

// Asker answers one question. *assistant.Pipeline satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string, hooks assistant.Hooks) (*assistant.Outcome, error)
}

// SchemaReader reads the live schema. *db.DB satisfies it.
type SchemaReader interface {
	Inspect(ctx context.Context) (db.Schema, error)
}

type Server struct {
	asker   Asker
	schemas SchemaReader
	cfg     config.ServerConfig
	logger  *slog.Logger
}

func New(asker Asker, schemas SchemaReader, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{asker: asker, schemas: schemas, cfg: cfg, logger: logger}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.TraceMiddleware)
	r.Use(metrics.LoggingMiddleware(s.logger))
	r.Use(metrics.MetricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Get("/schema", s.handleSchema)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Router(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("category", "http"), slog.String("addr", s.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question string   `json:"question,omitempty"`
	SQL      string   `json:"sql,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	Rows     [][]any  `json:"rows,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Error    string   `json:"error,omitempty"`
	Stage    string   `json:"stage,omitempty"`
}

// maxAskBody caps the /v1/ask request body.
const maxAskBody = 64 << 10

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, askResponse{Error: "request body too large"})
			return
		}
		respondJSON(w, http.StatusBadRequest, askResponse{Error: "invalid JSON body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		respondJSON(w, http.StatusBadRequest, askResponse{Error: "question is required"})
		return
	}

	out, err := s.asker.Ask(r.Context(), question, assistant.Hooks{})
	resp := askResponse{Question: question}
	if out != nil {
		resp.SQL = out.SQL
		resp.Answer = out.Answer
		if out.Result != nil {
			resp.Columns = out.Result.Columns
			resp.Rows = out.Result.Rows
		}
	}
	if err != nil {
		stage := assistant.StageOf(err)
		resp.Error = err.Error()
		resp.Stage = string(stage)
		respondJSON(w, statusForStage(stage), resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func statusForStage(stage assistant.Stage) int {
	switch stage {
	case assistant.StageModelCall, assistant.StageAnswerCompose:
		return http.StatusBadGateway
	case assistant.StageQueryExecution:
		return http.StatusUnprocessableEntity
	case assistant.StageSchemaRead:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type schemaResponse struct {
	Tables     []db.Table `json:"tables"`
	TableCount int        `json:"tableCount"`
	Text       string     `json:"text"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.schemas.Inspect(r.Context())
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	tables := schema.Tables
	if tables == nil {
		tables = []db.Table{}
	}
	respondJSON(w, http.StatusOK, schemaResponse{
		Tables:     tables,
		TableCount: len(tables),
		Text:       schema.Text(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondJSON encodes payload before writing the status, so an
// unencodable payload becomes a 500 instead of an empty 200.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
