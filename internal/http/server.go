// Package http exposes the ledger and goal tracker as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kopilka/internal/cache"
	"kopilka/internal/core"
	"kopilka/internal/services"
)

type Server struct {
	http.Server
	svc          *services.FinanceService
	rateLimiter  *rateLimiter
	historyLimit int

	// Aggregates are cheap but requested on every dashboard refresh, so
	// summaries and rendered charts are cached and flushed on any write.
	summaryCache *cache.LRU[core.MonthSummary]
	chartCache   *cache.LRU[[]byte]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
// historyLimit is the default page size for the transaction list.
func NewServer(addr string, svc *services.FinanceService, historyLimit int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:              svc,
		rateLimiter:      newRateLimiter(),
		historyLimit:     historyLimit,
		summaryCache:     cache.NewLRU[core.MonthSummary](100, 5*time.Minute),
		chartCache:       cache.NewLRU[[]byte](50, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleCategories))

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleRecordTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/summary/chart.png", s.withMiddleware(s.handleSummaryChart))

	mux.HandleFunc("POST /api/goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withMiddleware(s.handleDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/deposit", s.withMiddleware(s.handleDeposit))
	mux.HandleFunc("POST /api/goals/{id}/withdraw", s.withMiddleware(s.handleWithdraw))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summariesCleaned := s.summaryCache.CleanExpired()
			chartsCleaned := s.chartCache.CleanExpired()
			if summariesCleaned > 0 || chartsCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"summary_entries_removed", summariesCleaned,
					"chart_entries_removed", chartsCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateAggregates drops cached summaries and charts. Every mutation goes
// through here; serving a stale total after a write is worse than recomputing.
func (s *Server) invalidateAggregates() {
	s.summaryCache.Flush()
	s.chartCache.Flush()
}

// Shutdown stops the HTTP server and the cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
