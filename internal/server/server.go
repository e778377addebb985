// Package server exposes the liveness endpoint over both backing stores.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Probe is a minimal round trip against one backing store.
type Probe func(ctx context.Context) error

// probeTimeout bounds each store check inside a request.
const probeTimeout = time.Second

// HealthHandler answers liveness queries by probing both stores on every
// request.
type HealthHandler struct {
	sourceProbe Probe
	graphProbe  Probe
	log         *zap.Logger
}

// NewHealthHandler builds the handler over the two store probes.
func NewHealthHandler(sourceProbe, graphProbe Probe, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		sourceProbe: sourceProbe,
		graphProbe:  graphProbe,
		log:         logger.Named("health"),
	}
}

// Health reports {"ok": true} only when both stores answer a fresh probe.
// A failing store maps to {"ok": false}, never to a 5xx; the graph probe is
// skipped when the source already failed.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	ok := h.check(ctx, "source", h.sourceProbe) && h.check(ctx, "graph", h.graphProbe)
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

func (h *HealthHandler) check(ctx context.Context, store string, probe Probe) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := probe(probeCtx); err != nil {
		h.log.Warn("store probe failed", zap.String("store", store), zap.Error(err))
		return false
	}
	return true
}

// RegisterRoutes mounts the liveness endpoint on the engine.
func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
}

// NewRouter builds the engine for the serve command.
func NewRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	return r
}

// Run serves the engine until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, engine *gin.Engine, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &http.Server{Addr: addr, Handler: engine}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("liveness server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("liveness server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down liveness server: %w", err)
	}
	log.Info("liveness server stopped")
	return nil
}
