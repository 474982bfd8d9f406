package indexdb

import (
	"context"
	"database/sql"
	"fmt"
)

// RunSummary aggregates one run from the index.
type RunSummary struct {
	RunID            string
	Finished         bool
	FinalTick        uint64
	FinalScore       int
	Deposits         int
	Points           int
	Deaths           int
	StrategySwitches int
}

func (s *SQLiteIndex) RunSummary(ctx context.Context, runID string) (RunSummary, error) {
	out := RunSummary{RunID: runID}

	var (
		finishedAt sql.NullString
		finalTick  sql.NullInt64
		finalScore sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT finished_at, final_tick, final_score FROM runs WHERE run_id=?`, runID,
	).Scan(&finishedAt, &finalTick, &finalScore)
	if err == sql.ErrNoRows {
		return out, fmt.Errorf("run %s: not indexed", runID)
	}
	if err != nil {
		return out, err
	}
	out.Finished = finishedAt.Valid
	out.FinalTick = uint64(finalTick.Int64)
	out.FinalScore = int(finalScore.Int64)

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(points),0) FROM deposits WHERE run_id=?`, runID,
	).Scan(&out.Deposits, &out.Points); err != nil {
		return out, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deaths WHERE run_id=?`, runID,
	).Scan(&out.Deaths); err != nil {
		return out, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM strategy_switches WHERE run_id=?`, runID,
	).Scan(&out.StrategySwitches); err != nil {
		return out, err
	}
	return out, nil
}

// RunRow is one line of the runs table.
type RunRow struct {
	RunID        string `json:"run_id"`
	StartedAt    string `json:"started_at"`
	TuningDigest string `json:"tuning_digest"`
	Items        int    `json:"items"`
	FinishedAt   string `json:"finished_at,omitempty"`
	FinalTick    uint64 `json:"final_tick,omitempty"`
	FinalScore   int    `json:"final_score,omitempty"`
	Deaths       int    `json:"deaths,omitempty"`
}

// ListRuns returns the most recently started runs first.
func (s *SQLiteIndex) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, tuning_digest, items, finished_at, final_tick, final_score, deaths
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var (
			r          RunRow
			finishedAt sql.NullString
			finalTick  sql.NullInt64
			finalScore sql.NullInt64
			deaths     sql.NullInt64
		)
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.TuningDigest, &r.Items, &finishedAt, &finalTick, &finalScore, &deaths); err != nil {
			return nil, err
		}
		r.FinishedAt = finishedAt.String
		r.FinalTick = uint64(finalTick.Int64)
		r.FinalScore = int(finalScore.Int64)
		r.Deaths = int(deaths.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DepositRow is one delivered collectable.
type DepositRow struct {
	Tick   uint64 `json:"tick"`
	ItemID string `json:"item_id"`
	Points int    `json:"points"`
	Score  int    `json:"score"`
}

func (s *SQLiteIndex) Deposits(ctx context.Context, runID string) ([]DepositRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, item_id, points, score FROM deposits WHERE run_id=? ORDER BY tick`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DepositRow
	for rows.Next() {
		var (
			d    DepositRow
			tick int64
		)
		if err := rows.Scan(&tick, &d.ItemID, &d.Points, &d.Score); err != nil {
			return nil, err
		}
		d.Tick = uint64(tick)
		out = append(out, d)
	}
	return out, rows.Err()
}
