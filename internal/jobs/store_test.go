package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palmto/trajgen-backend-go/internal/models"
)

func TestStorePublishSubscribeFIFO(t *testing.T) {
	s := NewStore(time.Hour)

	id := s.Create()
	require.NoError(t, s.Publish(id, Progress(10, "loading")))
	require.NoError(t, s.Publish(id, Progress(50, "building")))
	require.NoError(t, s.Publish(id, Complete("done", "cache_200.gob", models.PipelineStats{CellsCreated: 36})))

	ch, err := s.Subscribe(id)
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, EventProgress, first.Type)
	require.NotNil(t, first.Progress)
	assert.Equal(t, 10, *first.Progress)
	assert.False(t, first.Terminal())

	second := <-ch
	assert.Equal(t, "building", second.Message)

	last := <-ch
	assert.Equal(t, EventComplete, last.Type)
	assert.True(t, last.Terminal())
	assert.Equal(t, "cache_200.gob", last.CacheFile)
	require.NotNil(t, last.Progress)
	assert.Equal(t, 100, *last.Progress)
	require.NotNil(t, last.Stats)
	assert.Equal(t, 36, last.Stats.CellsCreated)
}

func TestStoreSubscribeUnknownJob(t *testing.T) {
	s := NewStore(time.Hour)

	_, err := s.Subscribe("no-such-job")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorePublishUnknownJob(t *testing.T) {
	s := NewStore(time.Hour)

	err := s.Publish("no-such-job", Progress(1, "x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRemove(t *testing.T) {
	s := NewStore(time.Hour)

	id := s.Create()
	assert.Equal(t, 1, s.Len())

	s.Remove(id)
	assert.Equal(t, 0, s.Len())

	_, err := s.Subscribe(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestErrorEventOmitsProgress(t *testing.T) {
	ev := Error("boom")

	assert.True(t, ev.Terminal())
	assert.Nil(t, ev.Progress)
	assert.Nil(t, ev.Stats)
}

func TestKeepaliveIsNotTerminal(t *testing.T) {
	assert.False(t, Keepalive().Terminal())
}
