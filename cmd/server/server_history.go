package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

func (s *PanelServer) History(c *gin.Context) {
	if s.history == nil {
		abortWithError(c, http.StatusNotFound, "history is disabled")
		return
	}

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	ctx := c.Request.Context()
	runs, err := s.history.RecentRuns(ctx, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	pushes, err := s.history.RecentPushes(ctx, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := apiv1.HistoryResponse{
		Runs:   make([]apiv1.RunRecord, 0, len(runs)),
		Pushes: make([]apiv1.PushRecord, 0, len(pushes)),
	}
	for _, r := range runs {
		resp.Runs = append(resp.Runs, toRunRecord(r))
	}
	for _, p := range pushes {
		resp.Pushes = append(resp.Pushes, toPushRecord(p))
	}
	c.JSON(http.StatusOK, resp)
}
