package informer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pvedeploy/internal/model"
	"pvedeploy/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeKey(obj interface{}) (string, error) {
	n, ok := obj.(*model.PveNode)
	if !ok {
		return "", errors.New("not a node")
	}
	return n.NodeName, nil
}

func drain(t *testing.T, f *DeltaFIFO) []Delta {
	t.Helper()
	var out []Delta
	for !f.HasSynced() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := f.Pop(ctx, func(d Delta) error {
			out = append(out, d)
			return nil
		})
		cancel()
		require.NoError(t, err)
	}
	return out
}

func TestDeltaFIFO_Replace(t *testing.T) {
	f := NewDeltaFIFO(nodeKey, NewThreadSafeStore())
	assert.False(t, f.HasSynced())

	n, err := f.Replace([]interface{}{
		&model.PveNode{NodeName: "pve1", Status: "online"},
		&model.PveNode{NodeName: "pve2", Status: "online"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	deltas := drain(t, f)
	require.Len(t, deltas, 2)
	assert.Equal(t, DeltaAdded, deltas[0].Type)
	assert.Equal(t, DeltaAdded, deltas[1].Type)

	// 内容未变不产生事件
	n, err = f.Replace([]interface{}{
		&model.PveNode{NodeName: "pve1", Status: "online"},
		&model.PveNode{NodeName: "pve2", Status: "online"},
	})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, f.HasSynced())

	n, err = f.Replace([]interface{}{
		&model.PveNode{NodeName: "pve1", Status: "offline"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	deltas = drain(t, f)
	require.Len(t, deltas, 2)

	assert.Equal(t, DeltaUpdated, deltas[0].Type)
	assert.Equal(t, "offline", deltas[0].Object.(*model.PveNode).Status)
	assert.Equal(t, "online", deltas[0].Old.(*model.PveNode).Status)

	assert.Equal(t, DeltaDeleted, deltas[1].Type)
	assert.Equal(t, "pve2", deltas[1].Object.(*model.PveNode).NodeName)
}

func TestDeltaFIFO_ReplaceKeyError(t *testing.T) {
	f := NewDeltaFIFO(nodeKey, NewThreadSafeStore())
	_, err := f.Replace([]interface{}{"bogus"})
	assert.Error(t, err)
	assert.False(t, f.HasSynced())
}

func TestDeltaFIFO_Resync(t *testing.T) {
	f := NewDeltaFIFO(nodeKey, NewThreadSafeStore())
	_, err := f.Replace([]interface{}{&model.PveNode{NodeName: "pve1"}})
	require.NoError(t, err)
	drain(t, f)

	f.Resync()
	deltas := drain(t, f)
	require.Len(t, deltas, 1)
	assert.Equal(t, DeltaUpdated, deltas[0].Type)
}

func TestDeltaFIFO_PopHonoursContext(t *testing.T) {
	f := NewDeltaFIFO(nodeKey, NewThreadSafeStore())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := f.Pop(ctx, func(Delta) error {
		t.Fatal("unexpected delta")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type staticLister struct {
	mu    sync.Mutex
	items []interface{}
}

func (s *staticLister) List(context.Context) ([]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, nil
}

func (s *staticLister) set(items ...interface{}) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

type recordingHandler struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHandler) record(kind string, obj interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, kind+":"+obj.(*model.PveNode).NodeName)
}

func (h *recordingHandler) OnAdd(_ context.Context, obj interface{}) error {
	h.record("add", obj)
	return nil
}

func (h *recordingHandler) OnUpdate(_ context.Context, _, obj interface{}) error {
	h.record("update", obj)
	return nil
}

func (h *recordingHandler) OnDelete(_ context.Context, obj interface{}) error {
	h.record("delete", obj)
	return nil
}

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func TestInformer_DispatchesChanges(t *testing.T) {
	lister := &staticLister{}
	lister.set(&model.PveNode{NodeName: "pve1"})
	h := &recordingHandler{}

	inf := NewInformer("node-lab", lister, nodeKey, log.NewNop(), 10*time.Millisecond, 0)
	inf.AddEventHandler(h)
	inf.Run(context.Background())
	defer inf.Stop()

	require.Eventually(t, func() bool { return len(h.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, inf.HasSynced())
	assert.Len(t, inf.List(), 1)

	lister.set(&model.PveNode{NodeName: "pve2"})
	require.Eventually(t, func() bool { return len(h.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"add:pve1", "add:pve2", "delete:pve1"}, h.snapshot())
}
