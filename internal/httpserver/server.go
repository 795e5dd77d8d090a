package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tinytelemetry/spdash/internal/chartimg"
	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/model"
	"github.com/tinytelemetry/spdash/internal/snapshot"

	"github.com/gin-gonic/gin"
)

// Dashboard is the controller contract required by the HTTP API.
type Dashboard interface {
	Load(ctx context.Context) error
	Remount(reader model.ListReader) error
	State() model.ViewState
	Snapshot() dashboard.Snapshot
}

// QueryStore is the narrow snapshot store contract required by the HTTP API.
type QueryStore interface {
	ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error)
	GetSchemaDescription() string
	TableRowCounts() (map[string]int64, error)
	Clear() error
}

// Server exposes the dashboard state and the SQL snapshot over HTTP.
type Server struct {
	addr      string
	dash      Dashboard
	store     QueryStore
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	// Background loads started by POST /api/reload.
	loads sync.WaitGroup
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, dash Dashboard, store QueryStore) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		dash:      dash,
		store:     store,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/state", s.handleState)
	api.GET("/fields", s.handleFields)
	api.GET("/rows", s.handleRows)
	api.GET("/aggregate", s.handleAggregate)
	api.GET("/charts/:file", s.handleChart)
	api.POST("/reload", s.handleReload)
	api.GET("/schema", s.handleSchema)
	api.POST("/query", s.handleQuery)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("httpserver: serve: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the HTTP server and waits for reload goroutines.
func (s *Server) Stop() error {
	s.cancel()
	defer s.loads.Wait()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
		"phase":  s.dash.State().Phase.String(),
	})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, stateJSON(s.dash.State()))
}

func stateJSON(st model.ViewState) gin.H {
	return gin.H{
		"phase":   st.Phase.String(),
		"loading": st.Loading,
		"error":   st.Error,
		"tab":     st.Tab.String(),
	}
}

// loaded returns the current snapshot, or writes the error response when the
// list is not available: 503 while failed, 409 while idle or loading.
func (s *Server) loaded(c *gin.Context) (dashboard.Snapshot, bool) {
	snap := s.dash.Snapshot()
	switch snap.State.Phase {
	case model.PhaseLoaded:
		return snap, true
	case model.PhaseFailed:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": snap.State.Error})
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "list not loaded", "phase": snap.State.Phase.String()})
	}
	return snap, false
}

func (s *Server) handleFields(c *gin.Context) {
	snap, ok := s.loaded(c)
	if !ok {
		return
	}
	fields := snap.Fields
	if fields == nil {
		fields = []model.FieldDescriptor{}
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func (s *Server) handleRows(c *gin.Context) {
	snap, ok := s.loaded(c)
	if !ok {
		return
	}
	rows := snap.Rows
	if rows == nil {
		rows = []model.Row{}
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":      rows,
		"row_count": len(rows),
		"loaded_at": snap.LoadedAt,
	})
}

func (s *Server) handleAggregate(c *gin.Context) {
	snap, ok := s.loaded(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Aggregate())
}

func (s *Server) handleChart(c *gin.Context) {
	name, isPNG := strings.CutSuffix(c.Param("file"), ".png")
	if !isPNG {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart"})
		return
	}
	snap, ok := s.loaded(c)
	if !ok {
		return
	}

	width, err := sizeParam(c, "width")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	height, err := sizeParam(c, "height")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := chartimg.Surface(snap.Aggregate(), dashboard.Surface(name), width, height)
	switch {
	case errors.Is(err, chartimg.ErrUnknownSurface):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart"})
		return
	case errors.Is(err, chartimg.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	case err != nil:
		log.Printf("httpserver: render %s chart: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render chart"})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

const maxChartSize = 4096

func sizeParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxChartSize {
		return 0, fmt.Errorf("%s must be between 1 and %d", name, maxChartSize)
	}
	return n, nil
}

// handleReload remounts the controller and starts a fresh load in the background.
func (s *Server) handleReload(c *gin.Context) {
	if err := s.dash.Remount(nil); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Clear(); err != nil {
		log.Printf("httpserver: clear snapshot: %v", err)
	}

	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		if err := s.dash.Load(s.ctx); err != nil {
			log.Printf("httpserver: reload: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "reloading"})
}

func (s *Server) handleSchema(c *gin.Context) {
	description := s.store.GetSchemaDescription()

	tables, err := s.store.ExecuteQuery(c.Request.Context(),
		"SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_schema = 'main' AND table_name LIKE 'list_%' ORDER BY table_name, ordinal_position",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read schema metadata"})
		return
	}

	schema := make(map[string][]map[string]string)
	for _, row := range tables {
		tableName := fmt.Sprintf("%v", row["table_name"])
		schema[tableName] = append(schema[tableName], map[string]string{
			"column": fmt.Sprintf("%v", row["column_name"]),
			"type":   fmt.Sprintf("%v", row["data_type"]),
		})
	}

	counts, err := s.store.TableRowCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read table row counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"description": description,
		"tables":      schema,
		"row_counts":  counts,
	})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req struct {
		SQL string `json:"sql" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing sql field"})
		return
	}

	results, err := s.store.ExecuteQuery(c.Request.Context(), req.SQL)
	if err != nil {
		if !errors.Is(err, snapshot.ErrQueryRejected) {
			log.Printf("httpserver: query failed: %v", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	columns := make([]string, 0)
	if len(results) > 0 {
		for col := range results[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":   columns,
		"rows":      results,
		"row_count": len(results),
	})
}
