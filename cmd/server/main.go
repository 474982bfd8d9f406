package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"caddie.ai/internal/persistence/indexdb"
	persistlog "caddie.ai/internal/persistence/log"
	"caddie.ai/internal/persistence/snapshot"
	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/tuning"
	"caddie.ai/internal/sim/world"
	"caddie.ai/internal/transport/observer"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		runID       = flag.String("run", "", "run id (default: random uuid)")
		configDir   = flag.String("configs", "./configs", "config directory")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		fieldPath   = flag.String("field", "", "GeoJSON field file with the collectables (overrides tuning field.items)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite run index")
		allowRemote = flag.Bool("allow_remote", false, "serve observer endpoints to non-loopback clients")
		maxTicks    = flag.Uint64("max_ticks", 0, "stop after this many ticks (0 = run until signalled)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if fp := strings.TrimSpace(*fieldPath); fp != "" {
		items, err := collect.LoadField(fp)
		if err != nil {
			logger.Fatalf("load field: %v", err)
		}
		// Folded into the tuning so the run dir copy is enough to replay.
		tune.Field.Items = itemSpecs(items)
	}

	id := strings.TrimSpace(*runID)
	if id == "" {
		id = uuid.NewString()
	}
	w, err := world.New(world.Config{
		RunID:  id,
		Tuning: tune,
		Logger: log.New(os.Stdout, "[agent] ", log.LstdFlags|log.Lmicroseconds),
	})
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	runDir := filepath.Join(*dataDir, "runs", id)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		logger.Fatalf("run dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "tuning.json"), w.Tuning().JSON(), 0o644); err != nil {
		logger.Fatalf("write tuning: %v", err)
	}

	// Optional: read-model index backend (does not affect the run).
	idx, err := openRuntimeIndex(*dataDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.RecordRun(indexdb.RunInfo{
			RunID:     id,
			StartedAt: time.Now(),
			Tuning:    w.Tuning(),
			Items:     len(w.Pool().All()),
		}); err != nil {
			logger.Printf("index backend: record run: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(runDir)
	defer tickLog.Close()
	loggers := multiTickLogger{tickLog}
	if idx != nil {
		loggers = append(loggers, idx)
	}
	if *maxTicks > 0 {
		loggers = append(loggers, tickLimit{limit: *maxTicks, stop: cancel})
	}
	w.SetTickLogger(loggers)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	obsSrv := observer.NewServer(w, logger)
	obsSrv.AllowRemote = *allowRemote

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(w, idx, *allowRemote))
	mux.HandleFunc("/v1/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observe", obsSrv.WSHandler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("run %s: %d items, data=%s", id, len(w.Pool().All()), runDir)
	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Printf("ListenAndServe: %v", err)
		cancel()
	}

	<-runDone
	snapPath := snapshot.Path(runDir, w.CurrentTick())
	if err := snapshot.WriteSnapshot(snapPath, w.ExportSnapshot()); err != nil {
		logger.Printf("snapshot write: %v", err)
	}
	if idx != nil {
		idx.FinishRun(id, w.CurrentTick(), w.Score(), w.Deaths())
	}
	logger.Printf("run %s finished: tick=%d score=%d deaths=%d", id, w.CurrentTick(), w.Score(), w.Deaths())
}

func itemSpecs(items []*collect.Collectable) []tuning.ItemSpec {
	out := make([]tuning.ItemSpec, 0, len(items))
	for _, c := range items {
		out = append(out, tuning.ItemSpec{
			ID:    c.ID,
			Pos:   []float64{c.Pos[0], c.Pos[1]},
			Level: c.Level,
		})
	}
	return out
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

type multiTickLogger []world.TickLogger

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	for _, l := range m {
		_ = l.WriteTick(entry)
	}
	return nil
}

// tickLimit stops the run once limit ticks have been logged.
type tickLimit struct {
	limit uint64
	stop  func()
}

func (l tickLimit) WriteTick(entry world.TickLogEntry) error {
	if entry.Tick+1 >= l.limit {
		l.stop()
	}
	return nil
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
