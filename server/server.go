package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"heatopt/config"
	"heatopt/model"
	"heatopt/report"
	"heatopt/solver"
	"heatopt/store"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	cfg      *config.Config
	store    *store.Store

	registry *prometheus.Registry
	metrics  *Metrics

	// NewSolver builds the backend a client asked for; defaults to the
	// config's factory.
	NewSolver func(backend string) (solver.Solver, error)
}

// NewServer serves cfg's sweep over websocket. st may be nil, in which case
// runs are not persisted and the /runs routes answer 503.
func NewServer(cfg *config.Config, st *store.Store, upgrader websocket.Upgrader) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	s := &Server{
		addr:     cfg.ServerAddr,
		upgrader: upgrader,
		cfg:      cfg,
		store:    st,
		registry: reg,
		metrics:  NewMetrics(reg),
	}
	s.NewSolver = func(backend string) (solver.Solver, error) {
		c := *cfg
		c.Backend = backend
		return c.NewSolver()
	}
	return s
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("upgrade")
		return
	}
	defer conn.Close()

	hub := NewHub(conn, s.cfg.Sweep, s.cfg.Backend)
	hub.newSolver = s.NewSolver
	hub.store = s.store
	hub.metrics = s.metrics
	defer hub.close()

	entry := log.WithField("remote", r.RemoteAddr)
	entry.Info("client connected")
	go hub.handleRequest()
	go hub.handleResponse()
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				entry.WithError(err).Warn("read")
			}
			entry.Info("client disconnected")
			return
		}
		hub.msg <- msg
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.serveWs)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/runs", func(r chi.Router) {
		r.Use(s.requireStore)
		r.Get("/", s.listRuns)
		r.Get("/{id}", s.getRun)
		r.Get("/{id}/plot", s.plotRun)
	})
	return r
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			http.Error(w, "no run store configured", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("encode response")
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.Runs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, runs)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*model.SweepResult, bool) {
	res, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return res, true
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.loadRun(w, r); ok {
		writeJSON(w, res)
	}
}

func (s *Server) plotRun(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	line, err := report.NewLineChart(res, s.cfg.Report)
	if errors.Is(err, report.ErrNoData) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		log.WithError(err).Warn("render plot")
	}
}

// Serve listens until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
