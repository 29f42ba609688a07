package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Namespaces    int     `json:"namespaces"`
	Tags          int     `json:"tags"`
	Objects       int     `json:"objects"`
	LastWrite     string  `json:"last_write,omitempty"` // RFC 3339, empty before the first write
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	now := d.TimeNow
	return func(w http.ResponseWriter, r *http.Request) {
		var lastWrite string
		if t := d.Store.GetLastWrite(); !t.IsZero() {
			lastWrite = t.UTC().Format(time.RFC3339Nano)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			UptimeSeconds: now().Sub(start).Seconds(),
			Namespaces:    len(d.Store.NamespacePaths()),
			Tags:          len(d.Store.TagPaths("")),
			Objects:       d.Store.ObjectCount(),
			LastWrite:     lastWrite,
		})
	}
}
