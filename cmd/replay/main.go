package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	persistlog "caddie.ai/internal/persistence/log"
	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/tuning"
	"caddie.ai/internal/sim/world"
)

func main() {
	var (
		runDir     = flag.String("run", "", "run dir containing events/events-*.jsonl.zst")
		tuningPath = flag.String("tuning", "", "tuning used for the run (default: <run>/tuning.json)")
		fieldPath  = flag.String("field", "", "GeoJSON field file used for the run (optional)")
		verify     = flag.Bool("verify", false, "re-simulate the run and compare agent state tick by tick")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *runDir == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}

	files, err := persistlog.TickFiles(*runDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", filepath.Join(*runDir, "events"))
		os.Exit(1)
	}

	var w *world.World
	if *verify {
		tp := *tuningPath
		if tp == "" {
			tp = filepath.Join(*runDir, "tuning.json")
		}
		tune, err := tuning.Load(tp)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		var items []*collect.Collectable
		if *fieldPath != "" {
			items, err = collect.LoadField(*fieldPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, "load field:", err)
				os.Exit(1)
			}
		}
		w, err = world.New(world.Config{Tuning: tune, Items: items})
		if err != nil {
			fmt.Fprintln(os.Stderr, "world:", err)
			os.Exit(1)
		}
	}

	sum := newSummary()
	var size int64
	for _, path := range files {
		if fi, err := os.Stat(path); err == nil {
			size += fi.Size()
		}
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open:", err)
			os.Exit(1)
		}
		err = persistlog.ScanTicks(f, func(e world.TickLogEntry) error {
			if *toTick != 0 && e.Tick > *toTick {
				return errStop
			}
			if w != nil {
				if err := verifyTick(w, e); err != nil {
					return err
				}
			}
			return sum.Add(e)
		})
		_ = f.Close()
		if err == errStop {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "replay:", filepath.Base(path)+":", err)
			os.Exit(1)
		}
	}

	fmt.Printf("run %s: %d files, %s on disk\n", sum.RunID, len(files), humanize.Bytes(uint64(size)))
	sum.Print(os.Stdout)
	if w != nil {
		fmt.Printf("replay ok: checked=%s ticks\n", humanize.Comma(int64(sum.Ticks)))
	}
}
