package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/palmto/trajgen-backend-go/internal/jobs"
	"github.com/palmto/trajgen-backend-go/pkg/response"
)

// defaultKeepalive is how long a progress stream may stay idle before a
// keepalive event is emitted
const defaultKeepalive = 15 * time.Second

// ProgressHandler streams job progress events over SSE
type ProgressHandler struct {
	jobs      *jobs.Store
	keepalive time.Duration
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(jobStore *jobs.Store) *ProgressHandler {
	return &ProgressHandler{jobs: jobStore, keepalive: defaultKeepalive}
}

// Stream delivers the progress events of one job in order over a long-lived
// SSE connection. The stream ends after the terminal event has been written;
// idle periods produce keepalive events, never a server-side disconnect.
// GET /api/v1/trajectory/progress?task_id=...
func (h *ProgressHandler) Stream(c *gin.Context) {
	taskID := c.Query("task_id")
	if taskID == "" {
		response.BadRequest(c, "task_id is required")
		return
	}

	events, err := h.jobs.Subscribe(taskID)
	if err != nil {
		response.NotFound(c, fmt.Sprintf("Unknown task %s", taskID))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	write := func(ev jobs.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		c.Writer.Flush()
	}

	for {
		select {
		case <-c.Request.Context().Done():
			// Client went away; the worker keeps running regardless.
			return
		case ev := <-events:
			write(ev)
			if ev.Terminal() {
				h.jobs.Remove(taskID)
				return
			}
		case <-time.After(h.keepalive):
			write(jobs.Keepalive())
		}
	}
}
