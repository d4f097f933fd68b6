// Package api provides the read-only HTTP status API and WebSocket
// event stream for solshade.
//
// It exposes screen state, command history, and the solar model to
// dashboards and debugging tools. The API never accepts commands; the
// control loop is the only writer.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
	"github.com/jvanacker/solshade/internal/infrastructure/logging"
	"github.com/jvanacker/solshade/internal/measurements"
	"github.com/jvanacker/solshade/internal/screen"
	"github.com/jvanacker/solshade/internal/solar"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HistoryReader lists recorded commands. The screen package's SQLite
// repository implements it.
type HistoryReader interface {
	ListByScreen(ctx context.Context, screenName string, limit int) ([]screen.HistoryEntry, error)
}

// GatewayHealth reports broker connectivity for the health endpoint.
type GatewayHealth interface {
	IsConnected() bool
}

// MeasurementsReader queries the controller's measurements REST API.
// The measurements package's client implements it.
type MeasurementsReader interface {
	Latest(ctx context.Context, deviceUUID string) (map[string]any, error)
	Raw(ctx context.Context, deviceUUID, property string, window measurements.Range) (map[string]any, error)
	Aggregated(ctx context.Context, deviceUUID, property, interval, aggregation string, window measurements.Range) (map[string]any, error)
	Total(ctx context.Context, deviceUUID, aggregation string, window measurements.Range) (map[string]any, error)
}

// Deps holds the dependencies required by the API server.
//
// History, Gateway and Measurements are optional; their endpoints answer
// 503 when absent.
type Deps struct {
	Config       config.APIConfig
	WS           config.WebSocketConfig
	Logger       *logging.Logger
	Registry     *screen.Registry
	History      HistoryReader
	Site         solar.Site
	Gateway      GatewayHealth
	Measurements MeasurementsReader
	Version      string
}

// Server is the HTTP status API server.
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	logger       *logging.Logger
	registry     *screen.Registry
	history      HistoryReader
	site         solar.Site
	gateway      GatewayHealth
	measurements MeasurementsReader
	version      string

	server *http.Server
	hub    *Hub
	cancel context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("screen registry is required")
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		logger:       deps.Logger,
		registry:     deps.Registry,
		history:      deps.History,
		site:         deps.Site,
		gateway:      deps.Gateway,
		measurements: deps.Measurements,
		version:      deps.Version,
	}, nil
}

// Hub returns the WebSocket hub, creating it if needed. The scheduler
// uses it as its Broadcaster; it is only active after Start.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and launches the HTTP listener in a
// background goroutine. The server is stopped with Close().
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.Hub().Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds
// for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
