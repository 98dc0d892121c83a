// Package server exposes a trained network over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/born-ml/feedforward/internal/matrix"
	"github.com/born-ml/feedforward/internal/nn"
)

// RequestIDHeader carries the request ID on every response.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// PredictRequest is the body of POST /v1/predict.
type PredictRequest struct {
	Input []float64 `json:"input"`
}

// PredictResponse is returned by POST /v1/predict.
type PredictResponse struct {
	Output []float64 `json:"output"`
	Class  int       `json:"class"`
}

// ModelResponse is returned by GET /v1/model.
type ModelResponse struct {
	Layers []string `json:"layers"`
	In     int      `json:"in"`
	Out    int      `json:"out"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves predictions from a single network.
//
// Every forward pass mutates layer caches, so requests are serialized on mu.
type Server struct {
	mu     sync.Mutex
	net    *nn.Network
	logger *slog.Logger
	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server for net.
func New(net *nn.Network, opts ...Option) *Server {
	s := &Server{
		net:    net,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.logRequests())
	router.GET("/healthz", s.health)
	router.GET("/v1/model", s.model)
	router.POST("/v1/predict", s.predict)
	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) model(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := ModelResponse{
		Layers: make([]string, s.net.Len()),
		In:     s.net.InFeatures(),
		Out:    s.net.OutFeatures(),
	}
	for i := range resp.Layers {
		resp.Layers[i] = fmt.Sprint(s.net.Layer(i))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	input, err := matrix.FromSlice(1, len(req.Input), req.Input)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	out, err := s.net.Forward(input)
	s.mu.Unlock()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, nn.ErrShapeMismatch) {
			status = http.StatusBadRequest
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		Output: out.Row(0),
		Class:  out.Argmax()[0],
	})
}
