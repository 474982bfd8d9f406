package world

import "caddie.ai/internal/persistence/snapshot"

// ExportSnapshot captures the current run state. Call it from the world
// goroutine or after Run has returned.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			RunID:   w.runID,
			Tick:    w.tick.Load(),
		},
		TuningJSON: w.cfg.JSON(),
		Agent:      w.agentState(),
		Items:      w.itemStates(),
		Deaths:     w.deaths,
	}
}
