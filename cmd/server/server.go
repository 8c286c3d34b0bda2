package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/history"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/panel"
)

// HistoryReader is the read side of the history store.
type HistoryReader interface {
	RecentRuns(ctx context.Context, limit int) ([]history.RunRecord, error)
	RecentPushes(ctx context.Context, limit int) ([]history.PushRecord, error)
}

// PanelServer serves the control API for one panel coordinator.
type PanelServer struct {
	coord   *panel.Coordinator
	history HistoryReader
	logger  *zap.Logger

	mu    sync.RWMutex
	owner string
}

// NewPanelServer wraps coord. history may be nil.
func NewPanelServer(coord *panel.Coordinator, history HistoryReader, logger *zap.Logger) *PanelServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PanelServer{coord: coord, history: history, logger: logger}
}

// Router builds the gin engine with every API route.
func (s *PanelServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET(apiv1.PathHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/", requireSpiffeId())
	{
		v1.POST(apiv1.PathStart, s.Start)
		v1.POST(apiv1.PathStop, s.Stop)
		v1.GET(apiv1.PathStatus, s.Status)
		v1.GET(apiv1.PathLogs, s.Logs)
		v1.GET(apiv1.PathHistory, s.History)
	}
	return r
}

func (s *PanelServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}

func (s *PanelServer) ownerName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

func abortWithError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, apiv1.ErrorResponse{Error: msg})
}
