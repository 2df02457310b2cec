// Package statusapi serves the latest cycle, a live feed of new cycles,
// prometheus metrics and intensity history. It never writes to the store.
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
	"github.com/NotCoffee418/home_climate_control/pkg/livefeed"
	"github.com/NotCoffee418/home_climate_control/pkg/metrics"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	reports   ReportSource
	intensity IntensitySource
	hub       *livefeed.Hub
	metrics   *metrics.Collector
	router    *mux.Router
	now       func() time.Time

	mu       sync.RWMutex
	latestTS time.Time
	latest   []byte
}

func NewServer(reports ReportSource, intensity IntensitySource) *Server {
	s := &Server{
		reports:   reports,
		intensity: intensity,
		hub:       livefeed.NewHub(),
		metrics:   metrics.NewCollector(),
		router:    mux.NewRouter(),
		now:       time.Now,
	}
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/latest", s.handleLatest).Methods(http.MethodGet)
	s.router.Handle("/ws", s.hub)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/intensity", s.handleIntensity).Methods(http.MethodGet)
	s.router.HandleFunc("/intensity/history", s.handleHistory).Methods(http.MethodGet)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Poll loads the newest stored report and pushes it out when it is new.
func (s *Server) Poll(ctx context.Context) (bool, error) {
	ts, report, err := s.reports.LatestCycleReport(ctx)
	if errors.Is(err, climatedb.ErrNoHistory) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if !ts.After(s.latestTS) {
		s.mu.Unlock()
		return false, nil
	}
	s.latestTS = ts
	s.latest = report
	s.mu.Unlock()

	if err := s.metrics.Update(report); err != nil {
		log.WithError(err).Warn("could not export cycle report")
	}
	s.hub.Broadcast(report)
	log.WithFields(log.Fields{
		"timestamp": ts,
		"clients":   s.hub.ClientCount(),
	}).Debug("new cycle report")
	return true, nil
}

// Run polls every interval until ctx is done.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.Poll(ctx); err != nil {
			log.WithError(err).Warn("could not poll cycle reports")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Home Climate Control API",
		"status":  "running",
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	report := s.latest
	s.mu.RUnlock()

	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No cycle reports available yet"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(report)
}

func (s *Server) handleIntensity(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.intensity.Compare(r.Context(), s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	days := defaultHistoryDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryDays {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "days must be between 1 and " + strconv.Itoa(maxHistoryDays),
			})
			return
		}
		days = n
	}

	scores, err := s.intensity.History(r.Context(), s.now(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	if scores == nil {
		scores = []climatedb.IntensityScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func writeError(w http.ResponseWriter, err error) {
	log.WithError(err).Error("status api request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
