package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id                    TEXT PRIMARY KEY,
			timestamp             INTEGER NOT NULL,
			symbol                TEXT NOT NULL,
			begin_date            TEXT NOT NULL,
			end_date              TEXT NOT NULL,
			trading_days          INTEGER,
			cagr                  REAL,
			volatility            REAL,
			sharpe                REAL,
			max_drawdown          REAL,
			drawdown_start        TEXT,
			drawdown_end          TEXT,
			total_return          REAL,
			total_price_return    REAL,
			arithmetic_mean       REAL,
			geometric_mean        REAL,
			dividend_count        INTEGER,
			total_dividends       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON analysis_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS periodic_returns (
			run_id       TEXT NOT NULL REFERENCES analysis_runs(id),
			granularity  TEXT NOT NULL,
			label        TEXT NOT NULL,
			start_date   TEXT NOT NULL,
			end_date     TEXT NOT NULL,
			observations INTEGER,
			total_return REAL,
			PRIMARY KEY (run_id, granularity, label)
		)`,

		`CREATE TABLE IF NOT EXISTS analysis_failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT,
			source    TEXT,
			kind      TEXT,
			detail    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON analysis_failures(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordAnalysis stores the summary and every periodic aggregate of a in one
// transaction and returns the new run id.
func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	s := a.Summary

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO analysis_runs
		(id, timestamp, symbol, begin_date, end_date, trading_days,
		 cagr, volatility, sharpe, max_drawdown, drawdown_start, drawdown_end,
		 total_return, total_price_return, arithmetic_mean, geometric_mean,
		 dividend_count, total_dividends)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, time.Now().Unix(), a.Symbol, a.Begin.Format(dateLayout), a.End.Format(dateLayout), s.TradingDays,
		s.CAGR, s.AnnualizedVolatility, s.SharpeRatio, s.MaxDrawdown,
		s.DrawdownStart.Format(dateLayout), s.DrawdownEnd.Format(dateLayout),
		s.TotalReturn, s.TotalPriceReturn, s.ArithmeticMeanReturn, s.GeometricMeanReturn,
		s.DividendCount, s.TotalDividends,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO periodic_returns
		(run_id, granularity, label, start_date, end_date, observations, total_return)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("prepare periodic: %w", err)
	}
	defer stmt.Close()

	for _, p := range model.Periods {
		for _, pr := range a.Periodic(p) {
			if _, err := stmt.Exec(id, p.String(), pr.Label,
				pr.Start.Format(dateLayout), pr.End.Format(dateLayout),
				pr.Observations, pr.CompoundedTotalReturn); err != nil {
				return "", fmt.Errorf("insert periodic %s: %w", pr.Label, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *SQLiteRecorder) RecordFailure(f *Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analysis_failures
		(timestamp, symbol, source, kind, detail)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), f.Symbol, f.Source, f.Kind, f.Detail,
	)
	return err
}

// RecentRuns returns the latest runs for symbol, newest first. An empty
// symbol matches all symbols.
func (r *SQLiteRecorder) RecentRuns(symbol string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, symbol, begin_date, end_date, cagr, volatility, sharpe,
		max_drawdown, total_return, timestamp
		FROM analysis_runs
		WHERE ? = '' OR symbol = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, symbol, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			begin, end string
			ts         int64
		)
		if err := rows.Scan(&run.ID, &run.Symbol, &begin, &end, &run.CAGR, &run.Volatility,
			&run.Sharpe, &run.MaxDrawdown, &run.TotalReturn, &ts); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Begin, _ = time.Parse(dateLayout, begin)
		run.End, _ = time.Parse(dateLayout, end)
		run.RecordedAt = time.Unix(ts, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
