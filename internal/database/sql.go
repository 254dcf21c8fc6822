package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/testkube/testreport/internal/app"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// SQLDatabase stores run history in any of the supported SQL backends. The
// schema sticks to types all three understand; timestamps are unix seconds.
type SQLDatabase struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// Open connects to the history store and creates the schema when missing.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*SQLDatabase, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// One writer, and an in-memory database must stay on one connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &SQLDatabase{db: db, driver: driver, logger: logger}
	if err := d.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	logger.Debug("History store ready", zap.String("driver", driver))
	return d, nil
}

func ensureSQLiteDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func (d *SQLDatabase) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id VARCHAR(36) PRIMARY KEY,
			generated_at BIGINT NOT NULL,
			title VARCHAR(255),
			total INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			ignored_count INTEGER NOT NULL,
			unknown_count INTEGER NOT NULL,
			pass_rate DOUBLE PRECISION NOT NULL,
			line_coverage DOUBLE PRECISION NOT NULL,
			benchmarks INTEGER NOT NULL,
			memory_issues INTEGER NOT NULL
		)`,
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS.
	if d.driver != DriverMySQL {
		queries = append(queries, `CREATE INDEX IF NOT EXISTS idx_report_runs_generated ON report_runs(generated_at)`)
	}

	for _, query := range queries {
		if _, err := d.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

func (d *SQLDatabase) InsertRun(ctx context.Context, run RunRecord) error {
	_, err := d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO report_runs (id, generated_at, title, total, passed, failed, ignored_count, unknown_count,
			pass_rate, line_coverage, benchmarks, memory_issues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), run.ID, run.GeneratedAt.Unix(), run.Title, run.Total, run.Passed, run.Failed, run.Ignored, run.Unknown,
		run.PassRate, run.LineCoverage, run.Benchmarks, run.MemoryIssues)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

func (d *SQLDatabase) GetPassRateTrend(ctx context.Context, limit int) ([]app.DataPoint, error) {
	if limit <= 0 {
		return []app.DataPoint{}, nil
	}

	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT generated_at, pass_rate, total, line_coverage
		FROM report_runs
		ORDER BY generated_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []app.DataPoint{}
	for rows.Next() {
		var unix int64
		var p app.DataPoint
		if err := rows.Scan(&unix, &p.PassRate, &p.Total, &p.LineCoverage); err != nil {
			return nil, err
		}
		p.Date = time.Unix(unix, 0).UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(points)
	return points, nil
}

func (d *SQLDatabase) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders into the $n form postgres expects.
func (d *SQLDatabase) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
