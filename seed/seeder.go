package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/db"
	"github.com/DachengChen/askSQL/metrics"
)

// Seeder fetches, decodes, types and loads one dataset.
type Seeder struct {
	Fetcher *Fetcher
	Sink    Sink
	Logger  *slog.Logger
}

// New returns a seeder writing into d with the engine's native bulk path.
func New(cfg config.SeedConfig, d *db.DB, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		Fetcher: &Fetcher{HTTP: &http.Client{Timeout: 10 * time.Minute}, S3: cfg.S3},
		Sink:    SinkFor(d),
		Logger:  logger,
	}
}

// SinkFor picks COPY for PostgreSQL and batched INSERTs otherwise.
func SinkFor(d *db.DB) Sink {
	if d.Pool != nil {
		return &PostgresSink{Pool: d.Pool}
	}
	return &SQLSink{DB: d.SQL}
}

// Run replaces table with the dataset at source and returns the number
// of rows loaded.
func (s *Seeder) Run(ctx context.Context, source, table string) (int64, error) {
	start := time.Now()
	s.Logger.InfoContext(ctx, "seed started",
		slog.String("category", "seed"),
		slog.String("source", source),
		slog.String("table", table))

	body, err := s.Fetcher.Open(ctx, source)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	raw, err := Decode(source, body)
	if err != nil {
		return 0, err
	}
	ds, err := Infer(raw)
	if err != nil {
		return 0, err
	}

	n, err := s.Sink.Load(ctx, table, ds)
	if err != nil {
		return 0, err
	}
	metrics.AddSeedRows(n)

	s.Logger.InfoContext(ctx, "seed finished",
		slog.String("category", "seed"),
		slog.String("table", table),
		slog.Int("columns", len(ds.Columns)),
		slog.Int64("rows", n),
		slog.Duration("elapsed", time.Since(start)))
	return n, nil
}

// Decode picks the format from the source's file extension; anything
// that is not .parquet is read as CSV.
func Decode(source string, r io.Reader) (*Raw, error) {
	p := source
	if u, err := url.Parse(source); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".parquet", ".pq":
		return ReadParquet(r)
	case ".csv", "":
		return ReadCSV(r)
	default:
		raw, err := ReadCSV(r)
		if err != nil {
			return nil, fmt.Errorf("decode %s as csv: %w", source, err)
		}
		return raw, nil
	}
}
