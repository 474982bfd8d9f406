package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/world"
)

func TestTickLogger_RoundTripAcrossHours(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	now := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if err := l.WriteTick(world.TickLogEntry{
			RunID: "r1",
			Tick:  uint64(i),
			Agent: observerproto.AgentState{Score: i * 10, State: "Searching"},
		}); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	now = now.Add(2 * time.Minute)
	if err := l.WriteTick(world.TickLogEntry{
		RunID:         "r1",
		Tick:          3,
		Notifications: []protocol.Notification{{Tick: 3, Type: protocol.NoteDeath}},
	}); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := TickFiles(dir)
	if err != nil {
		t.Fatalf("TickFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 hourly files, got %v", files)
	}
	if filepath.Base(files[0]) != "events-2026-03-01-10.jsonl.zst" {
		t.Fatalf("unexpected name %s", files[0])
	}

	var got []world.TickLogEntry
	for _, f := range files {
		entries, err := ReadTicks(f)
		if err != nil {
			t.Fatalf("ReadTicks: %v", err)
		}
		got = append(got, entries...)
	}
	if len(got) != 4 {
		t.Fatalf("entries=%d", len(got))
	}
	for i, e := range got {
		if e.Tick != uint64(i) || e.RunID != "r1" {
			t.Fatalf("entry %d: %+v", i, e)
		}
	}
	if got[2].Agent.Score != 20 {
		t.Fatalf("agent state lost: %+v", got[2].Agent)
	}
	if len(got[3].Notifications) != 1 || got[3].Notifications[0].Type != protocol.NoteDeath {
		t.Fatalf("notifications lost: %+v", got[3].Notifications)
	}
}

func TestReadTicks_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	fixed := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	for run := 0; run < 2; run++ {
		l := NewTickLogger(dir)
		l.now = fixed
		if err := l.WriteTick(world.TickLogEntry{Tick: uint64(run)}); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
		_ = l.Close()
	}

	files, _ := TickFiles(dir)
	if len(files) != 1 {
		t.Fatalf("files=%v", files)
	}
	got, err := ReadTicks(files[0])
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(got) != 2 || got[0].Tick != 0 || got[1].Tick != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestReadTicks_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events-x.jsonl.zst")
	if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTicks(path); err == nil {
		t.Fatalf("expected error for non-zstd input")
	}
}

func TestTickFiles_SortsHoursAndSkipsStrays(t *testing.T) {
	dir := t.TempDir()
	hours := []time.Time{
		time.Date(2026, 3, 2, 0, 5, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 23, 55, 0, 0, time.UTC),
	}
	for i, h := range hours {
		l := NewTickLogger(dir)
		l.now = func() time.Time { return h }
		if err := l.WriteTick(world.TickLogEntry{Tick: uint64(i)}); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	for _, stray := range []string{"events-latest.jsonl.zst", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, eventsDir, stray), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := TickFiles(dir)
	if err != nil {
		t.Fatalf("TickFiles: %v", err)
	}
	want := []string{"events-2026-03-01-23.jsonl.zst", "events-2026-03-02-00.jsonl.zst"}
	if len(files) != len(want) {
		t.Fatalf("files=%v", files)
	}
	for i, f := range files {
		if filepath.Base(f) != want[i] {
			t.Fatalf("files[%d]=%s, want %s", i, filepath.Base(f), want[i])
		}
	}
}

func TestTickLogger_CloseIsIdempotent(t *testing.T) {
	l := NewTickLogger(t.TempDir())
	if err := l.Close(); err != nil {
		t.Fatalf("Close before write: %v", err)
	}
	if err := l.WriteTick(world.TickLogEntry{Tick: 1}); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
