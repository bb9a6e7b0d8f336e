package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ainews/app"
	"ainews/domain"
	"ainews/internal/logging"
)

var ErrAlreadyRunning = errors.New("already running")

// TryListen tries to bind the control address. If it's already in use, we assume an instance is running.
func TryListen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return ln, nil
}

// Scheduler is what the control endpoints drive. *app.Scheduler satisfies it.
type Scheduler interface {
	domain.Trigger
	SetInterval(d time.Duration)
	CurrentInterval() time.Duration
	Status() app.Status
}

type Server struct {
	sched  Scheduler
	logger *slog.Logger
}

func NewServer(sched Scheduler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{sched: sched, logger: logger.With("component", "control")}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/crawl":
		s.handleCrawl(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/set-interval":
		s.handleSetInterval(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/status":
		s.handleStatus(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleCrawl(w http.ResponseWriter, _ *http.Request) {
	started := s.sched.Trigger()
	s.logger.Info("crawl requested", "started", started)
	writeJSON(w, http.StatusAccepted, crawlResponse{OK: true, Started: started})
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration string `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid duration: %v", err), http.StatusBadRequest)
		return
	}
	if d <= 0 {
		http.Error(w, "interval must be positive", http.StatusBadRequest)
		return
	}

	old := s.sched.CurrentInterval()
	s.sched.SetInterval(d)
	s.logger.Info("interval changed", "old", old.String(), "new", d.String())
	writeJSON(w, http.StatusOK, intervalResponse{OK: true, Old: old.String(), New: d.String()})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(s.sched.Status()))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
