// Package db owns the single database connection used by askSQL and
// the two operations the pipeline performs on it: reading the live
// schema and running the generated query.
//
// Design decisions:
//   - PostgreSQL is reached through a pgx pool; a database/sql view of
//     the same pool is what Inspect and Execute consume, so both engines
//     (and sqlmock in tests) share one code path.
//   - DuckDB is opened through its database/sql driver for local files.
//   - SSH tunnel integration is transparent: if SSH is enabled, the
//     tunnel comes up first and pgx connects to the local endpoint.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/DachengChen/askSQL/config"
	"github.com/DachengChen/askSQL/ssh"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
)

// Querier is the subset of *sql.DB that Inspect and Execute need.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DB wraps the open connection and optional SSH tunnel.
type DB struct {
	Engine string
	SQL    *sql.DB
	Pool   *pgxpool.Pool // nil unless Engine is postgres
	Tunnel *ssh.Tunnel

	schema   string
	readOnly bool
}

// Connect opens the configured database, optionally through an SSH tunnel.
func Connect(ctx context.Context, cfg config.Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &DB{
		Engine:   cfg.DB.Engine,
		schema:   cfg.DB.CatalogSchema(),
		readOnly: cfg.ReadOnly,
	}

	switch cfg.DB.Engine {
	case config.EngineDuckDB:
		if err := d.openDuckDB(ctx, cfg.DB); err != nil {
			return nil, err
		}
	case config.EnginePostgres:
		if err := d.openPostgres(ctx, cfg, logger); err != nil {
			d.Close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported engine %q", cfg.DB.Engine)
	}

	logger.Info("database connected",
		slog.String("engine", d.Engine),
		slog.String("schema", d.schema),
		slog.Bool("read_only", d.readOnly))
	return d, nil
}

func (d *DB) openPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	dbCfg := cfg.DB
	if cfg.SSH.Enabled {
		tunnel, err := ssh.NewTunnel(cfg.SSH, dbCfg.Host, dbCfg.Port, logger)
		if err != nil {
			return fmt.Errorf("ssh tunnel: %w", err)
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return fmt.Errorf("ssh tunnel start: %w", err)
		}
		d.Tunnel = tunnel

		dbCfg.Host = localAddr.Host
		dbCfg.Port = localAddr.Port
	}

	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("pgx connect: %w", err)
	}
	d.Pool = pool

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("pgx ping: %w", err)
	}

	d.SQL = stdlib.OpenDBFromPool(pool)
	return nil
}

func (d *DB) openDuckDB(ctx context.Context, cfg config.DBConfig) error {
	sqlDB, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("ping duckdb: %w", err)
	}
	d.SQL = sqlDB
	return nil
}

// Schema returns the catalog schema this connection inspects.
func (d *DB) Schema() string {
	return d.schema
}

// Inspect reads the live schema description.
func (d *DB) Inspect(ctx context.Context) (Schema, error) {
	return Inspect(ctx, d.SQL, d.schema)
}

// Execute runs query. In read-only mode the query must pass
// CheckReadOnly and then runs inside a transaction that is always
// rolled back; on PostgreSQL the transaction is also READ ONLY.
func (d *DB) Execute(ctx context.Context, query string) (*ResultTable, error) {
	if !d.readOnly {
		return Execute(ctx, d.SQL, query)
	}
	if err := CheckReadOnly(query); err != nil {
		return nil, err
	}

	tx, err := d.SQL.BeginTx(ctx, d.readOnlyTxOptions())
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return Execute(ctx, tx, query)
}

// readOnlyTxOptions asks the database to refuse writes. The DuckDB
// driver rejects read-only transactions, so there the rollback alone
// discards any change.
func (d *DB) readOnlyTxOptions() *sql.TxOptions {
	if d.Engine == config.EngineDuckDB {
		return &sql.TxOptions{}
	}
	return &sql.TxOptions{ReadOnly: true}
}

// Close shuts down the connection and SSH tunnel.
func (d *DB) Close() {
	if d.SQL != nil {
		_ = d.SQL.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.Tunnel != nil {
		d.Tunnel.Stop()
	}
}
