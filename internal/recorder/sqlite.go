package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run outcomes to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode keeps ad-hoc reads cheap while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			fx_rate          REAL,
			fx_zone          TEXT,
			buy_triggers     INTEGER,
			sell_triggers    INTEGER,
			cond_triggers    INTEGER,
			total_assets     REAL,
			total_cash       REAL,
			cash_pct         REAL,
			warning_count    INTEGER,
			failures         TEXT,
			delivered        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS triggers (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     INTEGER NOT NULL REFERENCES runs(id),
			category   TEXT NOT NULL,
			ticker     TEXT NOT NULL,
			change_pct REAL,
			detail     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triggers_run ON triggers(run_id)`,

		`CREATE TABLE IF NOT EXISTS fx_changes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			prev_zone  TEXT,
			zone       TEXT,
			prev_rate  REAL,
			rate       REAL,
			action     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fx_changes_ts ON fx_changes(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts the run row plus one row per fired trigger.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var fxRate sql.NullFloat64
	var fxZone sql.NullString
	if rec.Fx != nil {
		fxRate = sql.NullFloat64{Float64: rec.Fx.CurrentRate, Valid: true}
		fxZone = sql.NullString{String: string(rec.Fx.Zone), Valid: true}
	}
	var totalAssets, totalCash, cashPct sql.NullFloat64
	warningCount := 0
	if rec.Portfolio != nil {
		totalAssets = sql.NullFloat64{Float64: rec.Portfolio.TotalAssets, Valid: true}
		totalCash = sql.NullFloat64{Float64: rec.Portfolio.TotalCashKRW, Valid: true}
		cashPct = sql.NullFloat64{Float64: rec.Portfolio.CashPct, Valid: true}
		warningCount = len(rec.Portfolio.Warnings)
	}

	res, err := r.db.Exec(`INSERT INTO runs
		(timestamp, fx_rate, fx_zone, buy_triggers, sell_triggers, cond_triggers,
		 total_assets, total_cash, cash_pct, warning_count, failures, delivered)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RanAt.Unix(), fxRate, fxZone,
		len(rec.Triggers.Buys), len(rec.Triggers.Sells), len(rec.Triggers.ConditionalBuys),
		totalAssets, totalCash, cashPct, warningCount,
		strings.Join(rec.Failures, "; "), rec.Delivered,
	)
	if err != nil {
		return err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, b := range rec.Triggers.Buys {
		if err := r.insertTrigger(runID, "buy", b.Ticker, b.ChangePct, b.Action); err != nil {
			return err
		}
	}
	for _, s := range rec.Triggers.Sells {
		if err := r.insertTrigger(runID, "sell", s.Ticker, s.ChangePct, s.Action); err != nil {
			return err
		}
	}
	for _, cb := range rec.Triggers.ConditionalBuys {
		if err := r.insertTrigger(runID, "conditional_buy", cb.Ticker, cb.DropPct, cb.Action); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) insertTrigger(runID int64, category, ticker string, changePct float64, detail string) error {
	_, err := r.db.Exec(`INSERT INTO triggers (run_id, category, ticker, change_pct, detail)
		VALUES (?,?,?,?,?)`,
		runID, category, ticker, changePct, detail,
	)
	return err
}

// RecordFxChange inserts one intraday zone-change row.
func (r *SQLiteRecorder) RecordFxChange(rec *FxChangeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fx_changes
		(timestamp, prev_zone, zone, prev_rate, rate, action)
		VALUES (?,?,?,?,?,?)`,
		rec.ObservedAt.Unix(), string(rec.Change.PrevZone), string(rec.Change.Zone),
		rec.Change.PrevRate, rec.Change.CurrentRate, rec.Change.Action,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
