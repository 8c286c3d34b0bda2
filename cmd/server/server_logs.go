package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Logs writes the panel log as newline-delimited JSON. With follow=true the
// response stays open and streams new entries until the client goes away.
func (s *PanelServer) Logs(c *gin.Context) {
	follow, _ := strconv.ParseBool(c.DefaultQuery("follow", "false"))

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	enc := json.NewEncoder(c.Writer)

	if !follow {
		for _, e := range s.coord.LogTail(-1) {
			if err := enc.Encode(toLogEntry(e)); err != nil {
				return
			}
		}
		return
	}

	ctx := c.Request.Context()
	c.Writer.Flush()
	for e := range s.coord.Logs(ctx) {
		if err := enc.Encode(toLogEntry(e)); err != nil {
			return
		}
		c.Writer.Flush()
	}
}
