// Package duckdb wraps an in-process analytical SQL engine over the
// on-disk columnar dataset file. It serves the aggregations the lazy
// in-memory pipeline does not perform efficiently: grouped percentile
// bands, dynamic-width weight distributions, competitive-position
// ranking, and full-dataset paginated leaderboards.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/openlift/ironstats/internal/adapters/cache"
	"github.com/openlift/ironstats/internal/domain/dataset"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/pkg/logger"
)

// Defaults.
const (
	defaultMemoryLimit = "2GB"
	defaultMaxPageSize = 500
	queryCacheEntries  = 100
	queryCacheEvict    = 20
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithThreads sets the engine's thread count. Defaults to the available
// hardware parallelism.
func WithThreads(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.threads = n
		}
	}
}

// WithMemoryLimit sets the engine's memory ceiling, e.g. "2GB".
func WithMemoryLimit(limit string) Option {
	return func(e *Engine) {
		if limit != "" {
			e.memoryLimit = limit
		}
	}
}

// WithMaxPageSize caps leaderboard page sizes.
func WithMaxPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPageSize = n
		}
	}
}

// Engine owns a single connection to the embedded SQL engine. Session
// settings (threads, memory limit) live on that connection, so it is
// pinned with SetMaxOpenConns(1) and every query is serialized behind
// mu. The lock is held only for query execution; query text and
// arguments are built before acquiring it.
type Engine struct {
	db          *sql.DB
	mu          sync.Mutex
	path        string
	threads     int
	memoryLimit string
	maxPageSize int
	columns     map[string]bool
	results     *cache.Cache
	log         logger.Logger
}

// New opens the engine over the dataset file at path, using the same
// newest-file fallback discovery as the in-memory loader.
func New(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	const op = "duckdb.new"

	resolved, err := dataset.Resolve(path)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		path:        resolved,
		threads:     runtime.GOMAXPROCS(0),
		memoryLimit: defaultMemoryLimit,
		maxPageSize: defaultMaxPageSize,
		results:     cache.New(cache.WithMaxEntries(queryCacheEntries), cache.WithEvictBatch(queryCacheEvict)),
		log:         logger.Named("duckdb"),
	}
	for _, opt := range opts {
		opt(e)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, model.Wrap(op, fmt.Errorf("%w: %w", ErrOpen, err))
	}
	// Session settings don't propagate across pooled connections.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		fmt.Sprintf("SET threads = %d", e.threads),
		fmt.Sprintf("SET memory_limit = '%s'", e.memoryLimit),
		"SET preserve_insertion_order = false",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, model.Wrap(op, fmt.Errorf("%w: %w", ErrOpen, err))
		}
	}

	escaped := strings.ReplaceAll(resolved, "'", "''")
	view := fmt.Sprintf("CREATE VIEW lifts AS SELECT * FROM read_parquet('%s')", escaped)
	if _, err := db.ExecContext(ctx, view); err != nil {
		db.Close()
		return nil, model.Wrap(op, fmt.Errorf("%w: %w", ErrOpen, err))
	}

	e.db = db
	if err := e.describeColumns(ctx); err != nil {
		db.Close()
		return nil, err
	}

	e.log.Info(ctx, "sql engine ready",
		logger.String("path", resolved),
		logger.Int("threads", e.threads),
		logger.String("memory_limit", e.memoryLimit))
	return e, nil
}

// Close releases the engine's connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// ClearCache drops every memoized query result.
func (e *Engine) ClearCache() {
	e.results.Clear()
}

// describeColumns records which columns the file actually carries, so
// optional columns (federation, date) degrade gracefully instead of
// failing query construction.
func (e *Engine) describeColumns(ctx context.Context) error {
	const op = "duckdb.describe"
	rows, err := e.db.QueryContext(ctx, "DESCRIBE lifts")
	if err != nil {
		return model.Wrap(op, fmt.Errorf("%w: %w", ErrQuery, err))
	}
	defer rows.Close()

	e.columns = make(map[string]bool)
	for rows.Next() {
		var name, ctype string
		var null, key, dflt, extra sql.NullString
		if err := rows.Scan(&name, &ctype, &null, &key, &dflt, &extra); err != nil {
			return model.Wrap(op, fmt.Errorf("%w: %w", ErrQuery, err))
		}
		e.columns[strings.ToLower(name)] = true
	}
	return model.Wrap(op, rows.Err())
}

func (e *Engine) hasColumn(name string) bool {
	return e.columns[name]
}

// scan runs one serialized query and hands the rows to fn. The mutex is
// held for execution and row consumption only; callers build SQL and
// arguments before calling.
func (e *Engine) scan(ctx context.Context, q string, args []any, fn func(*sql.Rows) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()
	if err := fn(rows); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return nil
}
