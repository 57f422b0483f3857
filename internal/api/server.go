package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/directory"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/config"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/logging"
	"github.com/nerrad567/lorawatch-core/internal/journal"
	"github.com/nerrad567/lorawatch-core/internal/monitor"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// Operator carries out the operator actions behind the device endpoints.
// *monitor.Manager implements it.
type Operator interface {
	AddDevice(ctx context.Context, req monitor.AddRequest) (*device.Device, error)
	RemoveDevice(ctx context.Context, devEUI string) error
	ClearAlert(devEUI string) (*device.Device, error)
	SendCommand(ctx context.Context, devEUI string, cmd monitor.Command) (string, error)
	Refresh(ctx context.Context) (int, error)
	Profiles(ctx context.Context) ([]directory.Profile, error)
}

// LogReader serves the event and alert logs. *journal.Journal implements it.
type LogReader interface {
	Recent(ctx context.Context, kind journal.Kind, limit int) ([]journal.Entry, error)
}

// HealthChecker is a component reported by GET /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Registry *device.Registry
	Operator Operator
	Logs     LogReader
	Notifier *observer.Notifier

	// Checks are reported by name on GET /health.
	Checks  map[string]HealthChecker
	Version string
}

// Server is the operator-facing HTTP API and WebSocket server.
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	registry *device.Registry
	operator Operator
	logs     LogReader
	notifier *observer.Notifier
	checks   map[string]HealthChecker
	version  string

	hub          *Hub
	unregister   func()
	server       *http.Server
	listenerAddr string
	mu           sync.Mutex
	cancel       context.CancelFunc
}

// New creates an API server. It is not listening until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Operator == nil {
		return nil, fmt.Errorf("operator is required")
	}

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		registry: deps.Registry,
		operator: deps.Operator,
		logs:     deps.Logs,
		notifier: deps.Notifier,
		checks:   deps.Checks,
		version:  deps.Version,
		hub:      NewHub(deps.WS, deps.Logger),
	}, nil
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router. Used by tests and by Start.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start registers the WebSocket hub with the notifier and begins
// listening. The listener is bound before Start returns, so a port
// conflict is reported as an error.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	if s.notifier != nil {
		s.unregister = s.notifier.Register(s.hub)
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.listenerAddr = ln.Addr().String()
	s.mu.Unlock()

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS", "address", ln.Addr().String(), "cert", s.cfg.TLS.CertFile)
			err = srv.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenerAddr
}

// Close stops accepting requests, disconnects WebSocket clients and waits
// up to gracefulShutdownTimeout for in-flight requests.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if s.unregister != nil {
		s.unregister()
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
