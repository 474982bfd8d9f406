package observer

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
	"caddie.ai/internal/sim/collect"
	"caddie.ai/internal/sim/tuning"
	"caddie.ai/internal/sim/world"
)

func startServer(t *testing.T) (*httptest.Server, *world.World) {
	t.Helper()
	return startServerWith(t, nil)
}

func startServerWith(t *testing.T, configure func(*Server)) (*httptest.Server, *world.World) {
	t.Helper()
	w, err := world.New(world.Config{
		RunID:  "run_obs",
		Tuning: tuning.Defaults(),
		Items:  []*collect.Collectable{collect.New("a", orb.Point{4, 0}, 2)},
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()

	s := NewServer(w, log.New(io.Discard, "", 0))
	if configure != nil {
		configure(s)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/v1/observe", s.WSHandler())
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, w
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observe"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBootstrap(t *testing.T) {
	srv, _ := startServer(t)

	resp, err := http.Get(srv.URL + "/v1/bootstrap")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.RunID != "run_obs" || b.ProtocolVersion != observerproto.Version {
		t.Fatalf("bootstrap: %+v", b)
	}
	if len(b.Items) != 1 || b.Items[0].Points != 20 {
		t.Fatalf("items: %+v", b.Items)
	}
}

func TestObserve_StreamsTicks(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)

	sub, _ := json.Marshal(observerproto.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
	})
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var last uint64
	for i := 0; i < 3; i++ {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg observerproto.TickMsg
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != protocol.TypeTick {
			t.Fatalf("type=%s", msg.Type)
		}
		if i > 0 && msg.Tick <= last {
			t.Fatalf("ticks not increasing: %d after %d", msg.Tick, last)
		}
		last = msg.Tick
	}
}

func TestObserve_PassiveObserverOutlivesReadTimeout(t *testing.T) {
	srv, _ := startServerWith(t, func(s *Server) {
		s.readTimeout = 300 * time.Millisecond
		s.pingInterval = 100 * time.Millisecond
	})
	conn := dial(t, srv)

	sub, _ := json.Marshal(observerproto.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
	})
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Never write again; the client answers pings while it reads.
	until := time.Now().Add(4 * 300 * time.Millisecond)
	n := 0
	for time.Now().Before(until) {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("dropped after %d ticks: %v", n, err)
		}
		n++
	}
	if n == 0 {
		t.Fatalf("no ticks received")
	}
}

func TestObserve_RejectsBadHandshake(t *testing.T) {
	srv, _ := startServer(t)

	cases := []struct {
		name string
		msg  observerproto.SubscribeMsg
		code string
	}{
		{"wrong version", observerproto.SubscribeMsg{Type: protocol.TypeSubscribe, ProtocolVersion: "9.9"}, protocol.ErrProtoVersion},
		{"wrong type", observerproto.SubscribeMsg{Type: "HELLO", ProtocolVersion: observerproto.Version}, protocol.ErrProtoBadRequest},
		{"unknown filter", observerproto.SubscribeMsg{Type: protocol.TypeSubscribe, ProtocolVersion: observerproto.Version, Types: []string{"NOPE"}}, protocol.ErrProtoBadRequest},
	}
	for _, tc := range cases {
		conn := dial(t, srv)
		b, _ := json.Marshal(tc.msg)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			t.Fatalf("%s: write: %v", tc.name, err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("%s: read: %v", tc.name, err)
		}
		var em protocol.ErrorMsg
		if err := json.Unmarshal(raw, &em); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if em.Type != protocol.TypeError || em.Code != tc.code || !protocol.IsKnownCode(em.Code) {
			t.Fatalf("%s: got %+v", tc.name, em)
		}
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	for addr, want := range map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	} {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}
