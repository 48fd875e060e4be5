// Package inspect implements the spikenetd inspection surface: a small
// HTTP/REST API exposing object store, scheduler, worker pool, and ID
// allocator statistics to the spikenetctl CLI, trimmed to read-only
// observability endpoints since the runtime has no client-facing write API
// of its own.
package inspect

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/axontrace/spikenet/pkg/config"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/scheduler"
	"github.com/axontrace/spikenet/pkg/store"
	"github.com/axontrace/spikenet/pkg/workerpool"
)

// Server is the inspection HTTP server wired to the running daemon's
// subsystems. It never mutates them; every handler is a read of an
// existing Stats()-style accessor.
type Server struct {
	objStore  *store.ObjectStore
	scheduler *scheduler.Scheduler
	pool      *workerpool.Pool
	allocator *idalloc.Allocator
	cfg       *config.Config

	httpServer *http.Server
	addr       string
}

// NewServer wires addr to a ServeMux of inspection handlers.
func NewServer(addr string, objStore *store.ObjectStore, sched *scheduler.Scheduler, pool *workerpool.Pool, alloc *idalloc.Allocator, cfg *config.Config) *Server {
	s := &Server{
		objStore:  objStore,
		scheduler: sched,
		pool:      pool,
		allocator: alloc,
		cfg:       cfg,
		addr:      addr,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/stats", s.handleStats)
	mux.HandleFunc("/v1/config", s.handleConfig)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (s *Server) Start() error {
	log.Printf("inspection surface listening on %s", s.addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the inspection server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	hits, misses := s.objStore.CacheStats()
	avgIterUS, maxIterUS, driftMS := s.scheduler.TimingStats()

	idCounts := map[string]uint64{}
	for _, k := range []idalloc.Kind{idalloc.KindNeuron, idalloc.KindDendrite, idalloc.KindSynapse, idalloc.KindAxon} {
		idCounts[k.String()] = s.allocator.Count(k)
	}

	writeJSON(w, map[string]any{
		"store": map[string]any{
			"cacheHits":   hits,
			"cacheMisses": misses,
			"cacheSize":   s.objStore.CacheSize(),
		},
		"scheduler": map[string]any{
			"state":          s.scheduler.State().String(),
			"pendingCount":   s.scheduler.PendingCount(),
			"avgIterationUS": avgIterUS,
			"maxIterationUS": maxIterUS,
			"driftMS":        driftMS,
		},
		"pool": map[string]any{
			"queueLength": s.pool.QueueLength(),
		},
		"idalloc":  idCounts,
		"profiler": s.objStore.Profiler().TopN(10),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"server":    s.cfg.Server,
		"storage":   s.cfg.Storage,
		"scheduler": s.cfg.Scheduler,
		"worker":    s.cfg.Worker,
		"strategy":  s.cfg.Strategy,
		"daemons":   s.cfg.Daemons,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠ inspect: encode response: %v", err)
	}
}
