package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusServer is a minimal read-only HTTP surface exposing /metrics
// (Prometheus) and /status (JSON) for operational visibility — diagnostic
// only, not a checkpoint/analysis I/O surface.
type StatusServer struct {
	router *chi.Mux
	ctx    *Context
}

func NewStatusServer(ctx *Context) *StatusServer {
	s := &StatusServer{router: chi.NewRouter(), ctx: ctx}
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
	s.router.Get("/status", s.handleStatus)
	return s
}

func (s *StatusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"rank":                 s.ctx.Hierarchy.Rank,
		"min_level":            s.ctx.Hierarchy.MinLevel,
		"registered_refreshes": s.ctx.Refreshes.Count(),
	}
	w.Header().Set("Content-Type", "application/json")
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	_ = enc.Encode(body)
}
