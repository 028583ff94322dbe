package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Update(t *testing.T) {
	var seen []Progress
	tracker := New("k1", func(p Progress) { seen = append(seen, p) })

	tracker.Update(Delta{Created: 1, New: 1})
	tracker.Update(Delta{Admitted: 1, New: -1, Ready: 1})
	tracker.Update(Delta{Dispatched: 1, Terminated: 1, Ready: -1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, "k1", snapshot.InstanceID)
	assert.Equal(t, 1, snapshot.CreatedTasks)
	assert.Equal(t, 1, snapshot.TerminatedTasks)
	assert.Equal(t, 0, snapshot.ReadyTasks)
	assert.Equal(t, 0, snapshot.Live())
	require.Len(t, seen, 3)
	assert.Equal(t, 1, seen[1].ReadyTasks)
}

func TestProgress_Concurrent(t *testing.T) {
	tracker := New("k2", nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Update(Delta{Created: 1, Ready: 1})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, tracker.Snapshot().ReadyTasks)
}

func TestProgress_Context(t *testing.T) {
	tracker := New("k3", nil)
	ctx := WithTracker(context.Background(), tracker)
	UpdateCtx(ctx, Delta{Destroyed: 1})
	UpdateCtx(context.Background(), Delta{Destroyed: 1})
	actual, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, actual.Snapshot().DestroyedTasks)

	var nilTracker *Progress
	nilTracker.Update(Delta{Created: 1})
	assert.Equal(t, Progress{}, nilTracker.Snapshot())
}
