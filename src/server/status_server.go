package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"
	"waveform-streamer/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// StatusFunc reports the state of the process the server runs in.
type StatusFunc func() gin.H

// -----------------------------------------------------------------------------
// StatusServer
// -----------------------------------------------------------------------------

var _ interfaces.IDataExchanger = (*StatusServer)(nil)

type StatusServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	engine     *gin.Engine
	httpServer *http.Server
	gatherer   prometheus.Gatherer
	status     StatusFunc

	// WebSocket viewers
	clients    map[*Viewer]struct{}
	broadcast  chan *models.MCycleSummary // Buffered queue drained by the hub
	register   chan *Viewer
	unregister chan *Viewer
	replies    chan reply
	quit       chan struct{}
	connected  int
	hubOnce    sync.Once
	stopOnce   sync.Once

	// Local cache
	latestState *models.MCycleSummary
	history     *utils.RingBuffer[models.MCycleSummary]
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewStatusServer builds the HTTP surface. gatherer backs /api/metrics and
// status backs /api/status; either may be nil.
func NewStatusServer(cfg *models.MConfig, log *logger.Logger, gatherer prometheus.Gatherer, status StatusFunc) *StatusServer {
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	if gatherer == nil {
		gatherer = prometheus.NewRegistry()
	}
	if status == nil {
		status = func() gin.H { return gin.H{} }
	}

	s := &StatusServer{
		Config:     cfg,
		Logger:     log,
		engine:     gin.New(),
		gatherer:   gatherer,
		status:     status,
		clients:    make(map[*Viewer]struct{}),
		broadcast:  make(chan *models.MCycleSummary, 256),
		register:   make(chan *Viewer),
		unregister: make(chan *Viewer),
		replies:    make(chan reply),
		quit:       make(chan struct{}),
		latestState: &models.MCycleSummary{
			Type:    "INITIAL",
			Symbols: make(map[string]models.MSymbolSummary),
		},
		history: utils.NewRingBuffer[models.MCycleSummary](cfg.Diagnostics.HistorySize),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())

	// CORS for local dashboards
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.setupRoutes()
	return s
}

// requestLogger logs requests through the process logger at DEBUG.
func (s *StatusServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *StatusServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/status", s.getStatus)
	api.GET("/cycles", s.getCycles)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the routes with the websocket hub running, for embedding
// the server in another listener.
func (s *StatusServer) Handler() http.Handler {
	s.startHub()
	return s.engine
}

func (s *StatusServer) startHub() {
	s.hubOnce.Do(func() { go s.handleWebsockets() })
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop is called.
func (s *StatusServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting status server on %s", addr)

	s.stateMutex.Lock()
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	srv := s.httpServer
	s.stateMutex.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *StatusServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)

		s.stateMutex.RLock()
		srv := s.httpServer
		s.stateMutex.RUnlock()
		if srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *StatusServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	acquisition := s.latestState.Acquisition
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections(),
		"latest_update": timestamp,
		"acquisition":   acquisition,
	})
}

// -----------------------------------------------------------------------------

func (s *StatusServer) getStatus(c *gin.Context) {
	st := s.status()
	s.stateMutex.RLock()
	st["processing_metrics"] = s.latestState.ProcessingMetrics
	s.stateMutex.RUnlock()
	c.JSON(http.StatusOK, st)
}

// -----------------------------------------------------------------------------

// getCycles returns the kept cycle history, oldest first. ?n= limits it to
// the newest n cycles.
func (s *StatusServer) getCycles(c *gin.Context) {
	n, err := parseCount(c.Query("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.stateMutex.RLock()
	var cycles []models.MCycleSummary
	if n > 0 {
		cycles = s.history.GetLatest(n)
	} else {
		cycles = s.history.GetAll()
	}
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{"count": len(cycles), "cycles": cycles})
}
