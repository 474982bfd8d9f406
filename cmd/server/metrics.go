package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/persistence/indexdb"
)

type statusSource interface {
	Bootstrap(ctx context.Context) (observerproto.BootstrapResponse, error)
}

type statsSource interface {
	Stats() indexdb.Stats
}

// metricsHandler serves a minimal Prometheus exposition of the run.
func metricsHandler(w statusSource, idx statsSource, allowRemote bool) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !allowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		st, err := w.Bootstrap(ctx)
		if err != nil {
			http.Error(rw, "world busy", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		run := st.RunID
		fmt.Fprintf(rw, "# HELP caddie_run_tick Current run tick.\n")
		fmt.Fprintf(rw, "# TYPE caddie_run_tick gauge\n")
		fmt.Fprintf(rw, "caddie_run_tick{run=%q} %d\n", run, st.Tick)

		fmt.Fprintf(rw, "# HELP caddie_agent_health Current agent health.\n")
		fmt.Fprintf(rw, "# TYPE caddie_agent_health gauge\n")
		fmt.Fprintf(rw, "caddie_agent_health{run=%q} %.3f\n", run, st.Agent.Health)

		fmt.Fprintf(rw, "# HELP caddie_agent_score Current agent score.\n")
		fmt.Fprintf(rw, "# TYPE caddie_agent_score gauge\n")
		fmt.Fprintf(rw, "caddie_agent_score{run=%q} %d\n", run, st.Agent.Score)

		alive := 0
		if st.Agent.Alive {
			alive = 1
		}
		fmt.Fprintf(rw, "# HELP caddie_agent_alive 1 while the agent is alive.\n")
		fmt.Fprintf(rw, "# TYPE caddie_agent_alive gauge\n")
		fmt.Fprintf(rw, "caddie_agent_alive{run=%q,strategy=%q,state=%q} %d\n", run, st.Agent.Strategy, st.Agent.State, alive)

		counts := map[string]int{}
		for _, it := range st.Items {
			counts[it.Status]++
		}
		fmt.Fprintf(rw, "# HELP caddie_items Collectables by status.\n")
		fmt.Fprintf(rw, "# TYPE caddie_items gauge\n")
		for _, s := range []string{"AVAILABLE", "HELD", "DEPOSITED"} {
			fmt.Fprintf(rw, "caddie_items{run=%q,status=%q} %d\n", run, s, counts[s])
		}

		if idx == nil {
			return
		}
		is := idx.Stats()
		fmt.Fprintf(rw, "# HELP caddie_index_queue_depth Index writer backlog.\n")
		fmt.Fprintf(rw, "# TYPE caddie_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "caddie_index_queue_depth{run=%q} %d\n", run, is.QueueDepth)
		fmt.Fprintf(rw, "# HELP caddie_index_dropped_total Index requests dropped under load.\n")
		fmt.Fprintf(rw, "# TYPE caddie_index_dropped_total counter\n")
		fmt.Fprintf(rw, "caddie_index_dropped_total{run=%q,kind=%q} %d\n", run, "tick", is.DropTickTotal)
		fmt.Fprintf(rw, "caddie_index_dropped_total{run=%q,kind=%q} %d\n", run, "finish", is.DropFinishTotal)
	}
}
