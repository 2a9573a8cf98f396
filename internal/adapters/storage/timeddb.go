package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"facilitydesk/internal/adapters/http/perf"
)

// Querier is the statement surface shared by the database and open transactions.
// Stores write "?" placeholders; implementations rebind them for the dialect.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLDB is the database interface used by all stores.
type SQLDB interface {
	Querier
	// InTx runs fn inside a transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(q Querier) error) error
}

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// TimedDB wraps a *sql.DB to log slow queries, record timings to a collector and
// rebind placeholders for Postgres.
type TimedDB struct {
	db        *sql.DB
	dialect   string
	collector *perf.Collector
	log       logrus.FieldLogger
	threshold float64
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// TimedOption configures a TimedDB.
type TimedOption func(*TimedDB)

// WithCollector records every statement to c.
func WithCollector(c *perf.Collector) TimedOption {
	return func(t *TimedDB) { t.collector = c }
}

// WithLogger sets the logger used for query timings.
func WithLogger(l logrus.FieldLogger) TimedOption {
	return func(t *TimedDB) { t.log = l }
}

// WithSlowQueryThreshold sets the warning threshold; non-positive values are ignored.
func WithSlowQueryThreshold(d time.Duration) TimedOption {
	return func(t *TimedDB) {
		if d > 0 {
			t.threshold = float64(d.Microseconds()) / 1000.0
		}
	}
}

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection for dialect
// POST: Returns a TimedDB that logs slow queries at WARN and others at DEBUG
func NewTimedDB(db *sql.DB, dialect string, opts ...TimedOption) *TimedDB {
	t := &TimedDB{
		db:        db,
		dialect:   dialect,
		log:       logrus.StandardLogger(),
		threshold: DefaultSlowQueryMs,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Dialect returns the SQL dialect the wrapper rebinds for.
func (t *TimedDB) Dialect() string {
	return t.dialect
}

func (t *TimedDB) logQuery(op, query string, start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	entry := t.log.WithFields(logrus.Fields{
		"op":          op,
		"duration_ms": durationMs,
	})
	if err != nil && err != sql.ErrNoRows {
		entry = entry.WithError(err)
	}
	if durationMs >= t.threshold {
		entry.WithField("query", query).Warn("slow_query")
	} else {
		entry.Debug("query")
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       op,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = Rebind(t.dialect, query)
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.logQuery("ExecContext", query, start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = Rebind(t.dialect, query)
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.logQuery("QueryContext", query, start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	query = Rebind(t.dialect, query)
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.logQuery("QueryRowContext", query, start, row.Err())
	return row
}

// InTx runs fn in a transaction. The transaction is rolled back when fn or the commit
// fails.
// POST: returns fn's error unchanged so callers can match sentinels with errors.Is
func (t *TimedDB) InTx(ctx context.Context, fn func(q Querier) error) error {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, nil)
	t.logQuery("BeginTx", "BEGIN", start, err)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&timedTx{tx: tx, parent: t}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// timedTx applies the parent's rebinding and timing to statements inside a transaction.
type timedTx struct {
	tx     *sql.Tx
	parent *TimedDB
}

func (x *timedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = Rebind(x.parent.dialect, query)
	start := time.Now()
	result, err := x.tx.ExecContext(ctx, query, args...)
	x.parent.logQuery("Tx.ExecContext", query, start, err)
	return result, err
}

func (x *timedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = Rebind(x.parent.dialect, query)
	start := time.Now()
	rows, err := x.tx.QueryContext(ctx, query, args...)
	x.parent.logQuery("Tx.QueryContext", query, start, err)
	return rows, err
}

func (x *timedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	query = Rebind(x.parent.dialect, query)
	start := time.Now()
	row := x.tx.QueryRowContext(ctx, query, args...)
	x.parent.logQuery("Tx.QueryRowContext", query, start, row.Err())
	return row
}

// Rebind rewrites "?" placeholders as "$1", "$2", ... for Postgres.
// Question marks inside single-quoted literals are left alone. Other dialects
// get the query back unchanged.
func Rebind(dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
