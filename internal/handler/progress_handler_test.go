package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palmto/trajgen-backend-go/internal/jobs"
	"github.com/palmto/trajgen-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func streamRequest(t *testing.T, h *ProgressHandler, taskID string, ctx context.Context) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest("GET", "/api/v1/trajectory/progress?task_id="+taskID, nil)
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	c.Request = req

	h.Stream(c)
	return w
}

// sseEvents parses the data lines of an SSE body
func sseEvents(t *testing.T, body string) []jobs.Event {
	t.Helper()

	var events []jobs.Event
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev jobs.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestStreamDeliversEventsUntilTerminal(t *testing.T) {
	store := jobs.NewStore(time.Hour)
	h := NewProgressHandler(store)

	id := store.Create()
	require.NoError(t, store.Publish(id, jobs.Progress(30, "Study area boundary computed")))
	require.NoError(t, store.Publish(id, jobs.Complete("Model building complete", "cache_200.gob", models.PipelineStats{CellsCreated: 16})))

	w := streamRequest(t, h, id, nil)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := sseEvents(t, w.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, jobs.EventProgress, events[0].Type)
	assert.Equal(t, jobs.EventComplete, events[1].Type)
	assert.Equal(t, "cache_200.gob", events[1].CacheFile)

	assert.Equal(t, 0, store.Len(), "job is removed after the terminal event")
}

func TestStreamUnknownTask(t *testing.T) {
	h := NewProgressHandler(jobs.NewStore(time.Hour))

	w := streamRequest(t, h, "no-such-task", nil)
	assert.Equal(t, 404, w.Code)
}

func TestStreamMissingTaskID(t *testing.T) {
	h := NewProgressHandler(jobs.NewStore(time.Hour))

	w := streamRequest(t, h, "", nil)
	assert.Equal(t, 400, w.Code)
}

func TestStreamKeepaliveOnIdleJob(t *testing.T) {
	store := jobs.NewStore(time.Hour)
	h := NewProgressHandler(store)
	h.keepalive = 10 * time.Millisecond

	id := store.Create()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w := streamRequest(t, h, id, ctx)

	events := sseEvents(t, w.Body.String())
	require.NotEmpty(t, events, "idle stream emits keepalives")
	for _, ev := range events {
		assert.Equal(t, jobs.EventKeepalive, ev.Type)
	}

	assert.Equal(t, 1, store.Len(), "client disconnect does not discard the job")
}
