package service

import (
	"testing"
	"time"

	"pvedeploy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressStore_ActiveEntriesAreNotEvicted(t *testing.T) {
	s := NewProgressStore(2, time.Minute)

	s.Put(Progress{DeploymentID: 1, Status: model.DeploymentStatusCreating, Message: "Allocating VM ID..."})
	for id := int64(10); id < 15; id++ {
		s.Put(Progress{DeploymentID: id, Status: model.DeploymentStatusRunning})
	}

	p, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Allocating VM ID...", p.Message)
	assert.False(t, p.UpdatedAt.IsZero())

	_, ok = s.Get(10)
	assert.False(t, ok)
	_, ok = s.Get(14)
	assert.True(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestProgressStore_TerminalMovesOutOfActive(t *testing.T) {
	s := NewProgressStore(4, time.Minute)
	s.Put(Progress{DeploymentID: 1, Status: model.DeploymentStatusCreating})
	s.Put(Progress{DeploymentID: 1, Status: model.DeploymentStatusError, ErrorDetail: "boom"})

	p, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, model.DeploymentStatusError, p.Status)
	assert.Equal(t, 1, s.Len())

	// 重新触发后回到活跃区
	s.Put(Progress{DeploymentID: 1, Status: model.DeploymentStatusCreating})
	assert.Equal(t, 1, s.Len())

	s.Delete(1)
	_, ok = s.Get(1)
	assert.False(t, ok)
}

func TestProgressStore_Purge(t *testing.T) {
	s := NewProgressStore(8, time.Minute)
	now := time.Now()
	s.Put(Progress{DeploymentID: 1, Status: model.DeploymentStatusRunning, UpdatedAt: now.Add(-2 * time.Minute)})
	s.Put(Progress{DeploymentID: 2, Status: model.DeploymentStatusStopped, UpdatedAt: now})
	s.Put(Progress{DeploymentID: 3, Status: model.DeploymentStatusCreating, UpdatedAt: now.Add(-time.Hour)})

	assert.Equal(t, 1, s.Purge(now))
	_, ok := s.Get(1)
	assert.False(t, ok)
	_, ok = s.Get(2)
	assert.True(t, ok)
	_, ok = s.Get(3)
	assert.True(t, ok)

	assert.Zero(t, NewProgressStore(8, 0).Purge(now))
}

func TestProgressStore_Subscribe(t *testing.T) {
	s := NewProgressStore(8, time.Minute)
	ch, cancel := s.Subscribe(1)

	s.Put(Progress{DeploymentID: 2, Status: model.DeploymentStatusCreating})
	s.Put(Progress{DeploymentID: 1, Status: model.DeploymentStatusCreating, Message: "Starting VM..."})

	select {
	case p := <-ch:
		assert.Equal(t, int64(1), p.DeploymentID)
		assert.Equal(t, "Starting VM...", p.Message)
	case <-time.After(time.Second):
		t.Fatal("no progress received")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// 取消后不再投递
	s.Put(Progress{DeploymentID: 1, Status: model.DeploymentStatusRunning})
}
