package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/tuning"
	"caddie.ai/internal/sim/world"
)

// SQLiteIndex is a queryable read model of runs. The JSONL event log stays
// the source of truth; ticks are dropped here when the writer falls behind.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick   atomic.Uint64
	dropFinish atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqFinish
)

type req struct {
	kind reqKind

	tick   world.TickLogEntry
	finish finishRow
}

type finishRow struct {
	RunID      string
	FinalTick  uint64
	FinalScore int
	Deaths     int
	FinishedAt string
}

type RunInfo struct {
	RunID     string
	StartedAt time.Time
	Tuning    tuning.Tuning
	Items     int
}

type Stats struct {
	QueueDepth      int
	QueueCapacity   int
	DropTickTotal   uint64
	DropFinishTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			tuning_digest TEXT NOT NULL,
			tuning_json TEXT NOT NULL,
			items INTEGER NOT NULL,
			finished_at TEXT,
			final_tick INTEGER,
			final_score INTEGER,
			deaths INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			state TEXT NOT NULL,
			strategy TEXT NOT NULL,
			health REAL NOT NULL,
			score INTEGER NOT NULL,
			notifications INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			item_id TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_type ON notifications(run_id, type, tick);`,
		`CREATE TABLE IF NOT EXISTS deposits (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			item_id TEXT NOT NULL,
			points INTEGER NOT NULL,
			score INTEGER NOT NULL,
			PRIMARY KEY (run_id, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS strategy_switches (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			health REAL NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE TABLE IF NOT EXISTS deaths (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			score INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropTickTotal:   s.dropTick.Load(),
		DropFinishTotal: s.dropFinish.Load(),
	}
}

// RecordRun stores the run header and the effective tuning. It is
// synchronous: call it once before the first tick.
func (s *SQLiteIndex) RecordRun(info RunInfo) error {
	if s == nil {
		return nil
	}
	if info.RunID == "" {
		return fmt.Errorf("record run: empty run id")
	}
	b := info.Tuning.JSON()
	sum := sha256.Sum256(b)
	started := info.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO runs(run_id,started_at,tuning_digest,tuning_json,items) VALUES(?,?,?,?,?)`,
		info.RunID,
		started.UTC().Format(time.RFC3339Nano),
		hex.EncodeToString(sum[:]),
		string(b),
		info.Items,
	); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) FinishRun(runID string, finalTick uint64, finalScore, deaths int) {
	if s == nil || s.closed.Load() {
		return
	}
	r := finishRow{
		RunID:      runID,
		FinalTick:  finalTick,
		FinalScore: finalScore,
		Deaths:     deaths,
		FinishedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqFinish, finish: r}:
	default:
		s.dropFinish.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(run_id,tick,state,strategy,health,score,notifications,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertNote, _ := s.db.Prepare(`INSERT OR REPLACE INTO notifications(run_id,tick,seq,type,item_id,raw_json) VALUES(?,?,?,?,?,?)`)
	insertDeposit, _ := s.db.Prepare(`INSERT OR REPLACE INTO deposits(run_id,tick,item_id,points,score) VALUES(?,?,?,?,?)`)
	insertSwitch, _ := s.db.Prepare(`INSERT OR REPLACE INTO strategy_switches(run_id,tick,strategy,health) VALUES(?,?,?,?)`)
	insertDeath, _ := s.db.Prepare(`INSERT OR REPLACE INTO deaths(run_id,tick,score) VALUES(?,?,?)`)
	updateRun, _ := s.db.Prepare(`UPDATE runs SET finished_at=?, final_tick=?, final_score=?, deaths=? WHERE run_id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertNote, insertDeposit, insertSwitch, insertDeath, updateRun} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil {
			return true
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			e := r.tick
			raw, _ := json.Marshal(e)
			if !exec(insertTick,
				e.RunID,
				int64(e.Tick),
				e.Agent.State,
				e.Agent.Strategy,
				e.Agent.Health,
				e.Agent.Score,
				len(e.Notifications),
				string(raw),
			) {
				continue
			}
			for i, n := range e.Notifications {
				if !indexNotification(exec, insertNote, insertDeposit, insertSwitch, insertDeath, e, i, n) {
					break
				}
			}

		case reqFinish:
			f := r.finish
			exec(updateRun, f.FinishedAt, int64(f.FinalTick), f.FinalScore, f.Deaths, f.RunID)
			// Make the final row visible to readers right away.
			commit()
		}
		flushIfNeeded()
	}

	commit()
}

func indexNotification(
	exec func(*sql.Stmt, ...any) bool,
	insertNote, insertDeposit, insertSwitch, insertDeath *sql.Stmt,
	e world.TickLogEntry, seq int, n protocol.Notification,
) bool {
	raw, _ := json.Marshal(n)
	if !exec(insertNote, e.RunID, int64(n.Tick), seq, n.Type, n.ItemID, string(raw)) {
		return false
	}
	switch n.Type {
	case protocol.NoteDeposit:
		return exec(insertDeposit, e.RunID, int64(n.Tick), n.ItemID, n.Points, n.Score)
	case protocol.NoteStrategyChanged:
		return exec(insertSwitch, e.RunID, int64(n.Tick), n.Strategy, e.Agent.Health)
	case protocol.NoteDeath:
		return exec(insertDeath, e.RunID, int64(n.Tick), e.Agent.Score)
	}
	return true
}
