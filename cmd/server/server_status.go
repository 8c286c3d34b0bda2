package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *PanelServer) Status(c *gin.Context) {
	c.JSON(http.StatusOK, toStatusResponse(s.coord.Snapshot(), s.ownerName()))
}
