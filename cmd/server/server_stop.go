package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

func (s *PanelServer) Stop(c *gin.Context) {
	// The check and the stop happen under one lock so a concurrent Start
	// cannot hand the panel to a new owner in between.
	s.mu.RLock()
	code, msg := s.checkOwnership(c.Request.Context())
	stopped := false
	if code == 0 {
		stopped = s.coord.Stop()
	}
	s.mu.RUnlock()
	if code != 0 {
		abortWithError(c, code, msg)
		return
	}

	if stopped {
		s.logger.Info("panel stopped via API")
	}

	c.JSON(http.StatusOK, apiv1.StopResponse{
		Stopped: stopped,
		Status:  toStatusResponse(s.coord.Snapshot(), s.ownerName()),
	})
}
