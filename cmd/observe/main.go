package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
)

func main() {
	var (
		url         = flag.String("url", "ws://localhost:8080/v1/observe", "observer ws url")
		types       = flag.String("types", "", "comma-separated notification types (empty = all)")
		statusEvery = flag.Uint64("status_every", 50, "print an agent status line every N ticks (0 = off)")
		strict      = flag.Bool("strict", false, "check every notification against the published schema")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[observe] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		Types:           splitTypes(*types),
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Printf("ERROR %s: %s", e.Code, e.Message)
			return

		case protocol.TypeTick:
			var tm observerproto.TickMsg
			if err := json.Unmarshal(msg, &tm); err != nil {
				continue
			}
			for _, n := range tm.Notifications {
				if *strict {
					if err := protocol.ValidateNotification(n); err != nil {
						logger.Printf("schema violation at tick %d: %v", tm.Tick, err)
					}
				}
				logger.Print(formatNote(n))
			}
			if *statusEvery > 0 && tm.Tick%*statusEvery == 0 {
				logger.Print(formatStatus(tm.Tick, tm.Agent))
			}
		}
	}
}

func splitTypes(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
