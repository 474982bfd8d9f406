package main

import (
	"path/filepath"
	"testing"

	"caddie.ai/internal/persistence/snapshot"
)

func TestLatestSnapshot(t *testing.T) {
	runDir := t.TempDir()
	if got := latestSnapshot(runDir); got != "" {
		t.Fatalf("empty dir: %q", got)
	}
	for _, tick := range []uint64{9, 120, 40} {
		snap := snapshot.SnapshotV1{Header: snapshot.Header{Version: snapshot.Version, RunID: "r", Tick: tick}}
		if err := snapshot.WriteSnapshot(snapshot.Path(runDir, tick), snap); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got := latestSnapshot(runDir)
	if filepath.Base(got) != "120.snap.zst" {
		t.Fatalf("latest=%s", got)
	}
}
