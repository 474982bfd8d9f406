package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"caddie.ai/internal/sim/world"
)

// A run's tick log is one zstd JSONL file per UTC hour under
// <runDir>/events, named events-YYYY-MM-DD-HH.jsonl.zst so that a lexical
// sort is chronological. Reopening an hour appends another zstd frame.
const (
	eventsDir  = "events"
	hourLayout = "2006-01-02-15"
)

func hourFile(runDir, hour string) string {
	return filepath.Join(runDir, eventsDir, "events-"+hour+".jsonl.zst")
}

// TickFiles lists a run's hourly tick log files in time order.
func TickFiles(runDir string) ([]string, error) {
	files, err := filepath.Glob(hourFile(runDir, "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]-[0-9][0-9]"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// TickLogger appends one JSON line per tick to the current hour's file.
// Every entry is flushed through the encoder so a crashed run loses at most
// the frame trailer.
type TickLogger struct {
	runDir string
	now    func() time.Time

	mu   sync.Mutex
	hour string
	f    *os.File
	zw   *zstd.Encoder
	bw   *bufio.Writer
}

func NewTickLogger(runDir string) *TickLogger {
	return &TickLogger{runDir: runDir, now: time.Now}
}

func (l *TickLogger) WriteTick(e world.TickLogEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("tick %d: encode: %w", e.Tick, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if hour := l.now().UTC().Format(hourLayout); hour != l.hour {
		if err := l.openHour(hour); err != nil {
			return fmt.Errorf("tick log: %w", err)
		}
	}
	if _, err := l.bw.Write(b); err != nil {
		return err
	}
	if err := l.bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := l.bw.Flush(); err != nil {
		return err
	}
	return l.zw.Flush()
}

func (l *TickLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeFile()
}

func (l *TickLogger) openHour(hour string) error {
	if err := l.closeFile(); err != nil {
		return err
	}
	path := hourFile(l.runDir, hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f, l.zw, l.bw = f, zw, bufio.NewWriterSize(zw, 128*1024)
	l.hour = hour
	return nil
}

func (l *TickLogger) closeFile() error {
	if l.f == nil {
		return nil
	}
	var err error
	if ferr := l.bw.Flush(); ferr != nil {
		err = ferr
	}
	if zerr := l.zw.Close(); err == nil {
		err = zerr
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f, l.zw, l.bw = nil, nil, nil
	l.hour = ""
	return err
}
