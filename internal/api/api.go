// Package api is the read-only HTTP facade over the in-memory snapshots.
// It gives command handlers and sibling subsystems access to classified
// data without touching the fetch/classify machinery. Requests arriving
// before the first refresh get empty collections, never errors.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"stormwatch/internal/catalog"
	"stormwatch/internal/cosmetics"
	"stormwatch/internal/snapshot"
)

// Server serves the snapshot read views.
type Server struct {
	missions  *snapshot.MissionStore
	catalog   *catalog.Service
	cosmetics *cosmetics.Service
	log       *zap.Logger
}

// New builds the server. catalog and cosmetics may be nil when those
// services are disabled; their routes then serve empty collections.
func New(missions *snapshot.MissionStore, cat *catalog.Service, cos *cosmetics.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{missions: missions, catalog: cat, cosmetics: cos, log: log}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/missions", func(w http.ResponseWriter, req *http.Request) {
		s.writeJSON(w, s.missions.Items())
	})
	r.Get("/missions/vbucks", func(w http.ResponseWriter, req *http.Request) {
		s.writeJSON(w, s.missions.VbucksBearing())
	})
	r.Get("/missions/legendary-survivors", func(w http.ResponseWriter, req *http.Request) {
		s.writeJSON(w, s.missions.LegendarySurvivorBearing())
	})
	r.Get("/catalog", func(w http.ResponseWriter, req *http.Request) {
		if s.catalog == nil {
			s.writeJSON(w, []catalog.Entry{})
			return
		}
		s.writeJSON(w, s.catalog.Current())
	})
	r.Get("/cosmetics", func(w http.ResponseWriter, req *http.Request) {
		if s.cosmetics == nil {
			s.writeJSON(w, []cosmetics.Cosmetic{})
			return
		}
		if q := req.URL.Query().Get("name"); q != "" {
			s.writeJSON(w, s.cosmetics.Search(q))
			return
		}
		s.writeJSON(w, s.cosmetics.Current())
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encode failed", zap.Error(err))
	}
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("read API listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	}
}
