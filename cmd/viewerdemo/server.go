package main

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter builds the dev server's routes: the static WASM bundle, a
// health probe, and (when enabled) a prometheus scrape endpoint for the
// server process itself.
func newRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	static := http.FileServer(http.Dir(cfg.StaticDir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		// the browser requires the correct MIME type before it will
		// instantiate a .wasm module streamed via instantiateStreaming
		if strings.HasSuffix(req.URL.Path, ".wasm") {
			w.Header().Set("Content-Type", "application/wasm")
		}
		static.ServeHTTP(w, req)
	})

	return r
}

func serve(cfg *Config) error {
	cfg.StaticDir = filepath.Clean(cfg.StaticDir)
	return http.ListenAndServe(cfg.Addr, newRouter(cfg))
}
