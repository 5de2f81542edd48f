package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"wifiwatch/internal/events"
)

const (
	eventWriteTimeout = 5 * time.Second
	eventBuffer       = 32

	// Synthetic first frame so observers can render without waiting
	// for the next tick.
	eventTypeStatus = "status"
)

var eventUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := eventUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveEventConnection(conn)
}

func (s *Server) serveEventConnection(conn *websocket.Conn) {
	defer conn.Close()

	sub := s.bus.Subscribe(eventBuffer)
	defer sub.Unsubscribe()

	if err := writeEvent(conn, events.Event{Type: eventTypeStatus, Payload: s.monitor.Status()}); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeEvent(conn, evt); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, evt events.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
	return conn.WriteJSON(evt)
}
