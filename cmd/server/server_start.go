package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

func (s *PanelServer) Start(c *gin.Context) {
	ctx := c.Request.Context()
	owner := ""
	if spiffeId := extractSpiffeIdFromContext(ctx); spiffeId != nil {
		owner = *spiffeId
	}

	// Holding mu across Start keeps checkOwnership from seeing the running
	// panel before its owner is recorded.
	s.mu.Lock()
	started := s.coord.Start()
	if started {
		s.owner = owner
	}
	s.mu.Unlock()
	if started {
		s.logger.Info("panel started via API", zap.String("owner", owner))
	}

	c.JSON(http.StatusOK, apiv1.StartResponse{
		Started: started,
		Status:  toStatusResponse(s.coord.Snapshot(), s.ownerName()),
	})
}
