// Package web exposes the daemon's status API and the server-sent-events
// orientation stream.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"orientd/internal/orientation"
)

// OrientationService is the slice of the orientation service the web
// surface needs. Subscribe/Unsubscribe mark listener-registration edges:
// the first connected event stream starts the pump, the last one to leave
// stops it.
type OrientationService interface {
	Snapshot() orientation.Snapshot
	Subscribe()
	Unsubscribe()
}

type StatusResponse struct {
	NowUTC        string               `json:"now_utc"`
	StartUTC      string               `json:"start_utc"`
	UptimeSeconds float64              `json:"uptime_seconds"`
	Orientation   orientation.Snapshot `json:"orientation"`
}

// Handler builds the HTTP surface. logs may be nil to omit /api/logs.
func Handler(orient OrientationService, events *Broadcaster, logs *LogBuffer, startedAt time.Time) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", statusHandler(orient, startedAt)).Methods(http.MethodGet)
	r.HandleFunc("/api/events", eventsHandler(orient, events)).Methods(http.MethodGet)
	if logs != nil {
		r.Handle("/api/logs", logs.Handler()).Methods(http.MethodGet)
	}
	return r
}

func statusHandler(orient OrientationService, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		resp := StatusResponse{
			NowUTC:        now.Format(time.RFC3339Nano),
			StartUTC:      startedAt.UTC().Format(time.RFC3339Nano),
			UptimeSeconds: now.Sub(startedAt).Seconds(),
			Orientation:   orient.Snapshot(),
		}
		b, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			http.Error(w, "marshal failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(b)
		_, _ = w.Write([]byte("\n"))
	}
}

// eventsHandler streams delivered orientation samples as SSE. Each open
// stream counts as one pump subscriber.
func eventsHandler(orient OrientationService, events *Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		id, ch := events.Subscribe(4)
		defer events.Unsubscribe(id)

		orient.Subscribe()
		defer orient.Unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fl.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case sm, open := <-ch:
				if !open {
					return
				}
				b, err := json.Marshal(sm)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
					return
				}
				fl.Flush()
			}
		}
	}
}
