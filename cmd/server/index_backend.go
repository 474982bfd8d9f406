package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"caddie.ai/internal/persistence/indexdb"
	"caddie.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	Close() error
	RecordRun(info indexdb.RunInfo) error
	FinishRun(runID string, finalTick uint64, finalScore, deaths int)
	Stats() indexdb.Stats
}

// openRuntimeIndex returns nil when indexing is disabled. CADDIE_INDEX_BACKEND
// selects the backend: sqlite (default) or none.
func openRuntimeIndex(dataDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("CADDIE_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(dataDir, "index", "runs.sqlite")
		return indexdb.OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unsupported CADDIE_INDEX_BACKEND: %s", backend)
	}
}
