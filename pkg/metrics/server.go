package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"
)

// ServerOptions configures the side-port server that exposes /metrics.
type ServerOptions struct {
	Port    int
	Service string
	// Status, when set, is served as JSON at /status so operators can see
	// which corpus generation a replica serves without going through the
	// public port.
	Status func(ctx context.Context) (any, error)
}

var indexPage = template.Must(template.New("index").Parse(`<html><head><title>{{.Service}} metrics</title></head><body>
<h1>{{.Service}}</h1>
<ul>
<li><a href="/metrics">/metrics</a> Prometheus exposition</li>
{{if .HasStatus}}<li><a href="/status">/status</a> active corpus generation</li>{{end}}
</ul>
</body></html>
`))

// NewServeMux returns the handler tree of the metrics server.
func NewServeMux(opts ServerOptions) *http.ServeMux {
	if opts.Service == "" {
		opts.Service = "herbal-search"
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", Handler())
	if opts.Status != nil {
		mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status, err := opts.Status(r.Context())
			if err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			json.NewEncoder(w).Encode(status)
		})
	}
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		indexPage.Execute(w, struct {
			Service   string
			HasStatus bool
		}{opts.Service, opts.Status != nil})
	})
	return mux
}

// StartServer serves NewServeMux(opts) in the background and returns its
// shutdown function.
func StartServer(opts ServerOptions) (shutdown func(context.Context) error) {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      NewServeMux(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("metrics server listening", "addr", server.Addr, "service", opts.Service)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()

	return server.Shutdown
}
