package kernel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/allocator"
	"github.com/farxan99/OsSimulator/service/dao"
	"github.com/farxan99/OsSimulator/service/event"
	"github.com/farxan99/OsSimulator/service/messaging"
	"github.com/farxan99/OsSimulator/service/scheduler"
)

func newKernel(t *testing.T, opts ...Option) *Service {
	t.Helper()
	srv, err := New(DefaultConfig(), opts...)
	require.NoError(t, err)
	return srv
}

func createAll(t *testing.T, srv *Service, bursts ...int) []task.ID {
	t.Helper()
	var ids []task.ID
	for _, burst := range bursts {
		id, err := srv.CreateTask(context.Background(), burst, 0, 0)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestService_CreateTask(t *testing.T) {
	srv := newKernel(t)
	ids := createAll(t, srv, 3, 1, 4, 1, 5)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
	assert.Equal(t, task.ID(1), ids[0])
	assert.Equal(t, ids, srv.ReadyQueue())

	created, ok := srv.Task(context.Background(), ids[0])
	require.True(t, ok)
	assert.Equal(t, task.StateReady, created.State)
	assert.Equal(t, task.DefaultOwner, created.Owner)
	assert.Equal(t, 3, created.BurstTime)

	region, ok := srv.Allocator().Region(ids[0])
	require.True(t, ok)
	assert.Equal(t, 1, region.Len())
	assert.Equal(t, 4096, srv.PageSize())
	assert.Equal(t, 5, srv.Progress().CreatedTasks)
}

func TestService_IDsNeverReused(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	first := createAll(t, srv, 1, 2)
	assert.True(t, srv.DestroyTask(ctx, first[1]))
	_, err := srv.DispatchOne(ctx, scheduler.NameFCFS)
	require.NoError(t, err)
	next := createAll(t, srv, 7)
	assert.Equal(t, task.ID(3), next[0])
}

func TestService_InvalidConfig(t *testing.T) {
	_, err := New(Config{PageSize: 0, TotalCapacity: 1024})
	assert.ErrorIs(t, err, allocator.ErrInvalidCellSize)
	_, err = New(Config{PageSize: 1024, TotalCapacity: -1})
	assert.ErrorIs(t, err, allocator.ErrInvalidCapacity)
}

func TestService_AdmitNewArrivals(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	assert.Equal(t, 0, srv.AdmitNewArrivals(ctx))

	ready := createAll(t, srv, 9)
	var submitted []task.ID
	for _, burst := range []int{4, 2, 6} {
		id, err := srv.Submit(ctx, burst, 1, 0)
		require.NoError(t, err)
		submitted = append(submitted, id)
		aTask, ok := srv.Task(ctx, id)
		require.True(t, ok)
		assert.Equal(t, task.StateNew, aTask.State)
	}
	assert.Equal(t, submitted, srv.NewQueue())

	assert.Equal(t, 3, srv.AdmitNewArrivals(ctx))
	assert.Empty(t, srv.NewQueue())
	assert.Equal(t, append(ready, submitted...), srv.ReadyQueue())
	for _, id := range submitted {
		aTask, ok := srv.Task(ctx, id)
		require.True(t, ok)
		assert.Equal(t, task.StateReady, aTask.State)
	}
	snapshot := srv.Progress()
	assert.Equal(t, 3, snapshot.AdmittedTasks)
	assert.Equal(t, 0, snapshot.NewTasks)
	assert.Equal(t, 4, snapshot.ReadyTasks)
}

func TestService_DispatchOne(t *testing.T) {
	testCases := []struct {
		description string
		algorithm   string
		bursts      []int
		expect      task.ID
	}{
		{description: "fcfs returns head", algorithm: scheduler.NameFCFS, bursts: []int{5, 2, 2}, expect: 1},
		{description: "sjf returns shortest, earliest on tie", algorithm: scheduler.NameSJF, bursts: []int{5, 2, 2}, expect: 2},
		{description: "sjf single", algorithm: scheduler.NameSJF, bursts: []int{8}, expect: 1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			srv := newKernel(t)
			ctx := context.Background()
			createAll(t, srv, testCase.bursts...)
			dispatched, err := srv.DispatchOne(ctx, testCase.algorithm)
			require.NoError(t, err)
			require.NotNil(t, dispatched)
			assert.Equal(t, testCase.expect, dispatched.ID)
			assert.Equal(t, task.StateTerminated, dispatched.State)
			_, ok := srv.Task(ctx, dispatched.ID)
			assert.False(t, ok)
			_, ok = srv.Allocator().Region(dispatched.ID)
			assert.False(t, ok)
			assert.NotContains(t, srv.ReadyQueue(), dispatched.ID)
			assert.Len(t, srv.ReadyQueue(), len(testCase.bursts)-1)
		})
	}
}

func TestService_DispatchEmptyAndUnknown(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	dispatched, err := srv.DispatchOne(ctx, scheduler.NameFCFS)
	assert.NoError(t, err)
	assert.Nil(t, dispatched)

	_, err = srv.DispatchOne(ctx, "RR")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = srv.DispatchAll(ctx, "RR")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = srv.Select(ctx, "RR")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestService_DispatchAll(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	ids := createAll(t, srv, 4, 3, 2, 1)
	blocked := createAll(t, srv, 1)
	require.True(t, srv.BlockTask(ctx, blocked[0]))

	count, err := srv.DispatchAll(ctx, scheduler.NameSJF)
	require.NoError(t, err)
	assert.Equal(t, len(ids), count)
	assert.Empty(t, srv.ReadyQueue())
	for _, id := range ids {
		_, ok := srv.Task(ctx, id)
		assert.False(t, ok)
	}
	remaining := srv.Tasks(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, blocked[0], remaining[0].ID)
	assert.Equal(t, 4, srv.Progress().TerminatedTasks)
}

func TestService_Select(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	createAll(t, srv, 6, 3)

	selected, err := srv.Select(ctx, scheduler.NameSJF)
	require.NoError(t, err)
	require.NotNil(t, selected)
	assert.Equal(t, task.ID(2), selected.ID)
	assert.Equal(t, task.StateReady, selected.State)
	assert.Equal(t, []task.ID{1}, srv.ReadyQueue())
	_, ok := srv.Task(ctx, selected.ID)
	assert.True(t, ok)
}

func TestService_WaitingTransitions(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	ids := createAll(t, srv, 1, 2, 3)

	assert.True(t, srv.SuspendTask(ctx, ids[0]))
	assert.True(t, srv.BlockTask(ctx, ids[2]))
	assert.False(t, srv.BlockTask(ctx, ids[0]), "already waiting")
	assert.Equal(t, []task.ID{ids[1]}, srv.ReadyQueue())
	assert.Equal(t, []task.ID{ids[0], ids[2]}, srv.BlockedQueue())

	suspended, _ := srv.Task(ctx, ids[0])
	assert.Equal(t, task.StateSuspended, suspended.State)
	blocked, _ := srv.Task(ctx, ids[2])
	assert.Equal(t, task.StateBlocked, blocked.State)
	waiting := srv.Tasks(ctx, dao.StateParameter(string(task.StateBlocked), string(task.StateSuspended)))
	assert.Len(t, waiting, 2)

	assert.True(t, srv.WakeupTask(ctx, ids[0]), "wakeup releases a suspended task")
	assert.True(t, srv.ResumeTask(ctx, ids[2]), "resume releases a blocked task")
	assert.False(t, srv.ResumeTask(ctx, ids[2]))
	assert.False(t, srv.WakeupTask(ctx, 42))
	assert.Equal(t, []task.ID{ids[1], ids[0], ids[2]}, srv.ReadyQueue())
	assert.Empty(t, srv.BlockedQueue())

	snapshot := srv.Progress()
	assert.Equal(t, 3, snapshot.ReadyTasks)
	assert.Equal(t, 0, snapshot.WaitingTasks)
}

func TestService_SuspendRequiresReady(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	id, err := srv.Submit(ctx, 3, 0, 0)
	require.NoError(t, err)
	assert.False(t, srv.SuspendTask(ctx, id))
	assert.Equal(t, []task.ID{id}, srv.NewQueue())
}

func TestService_DestroyTask(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	ids := createAll(t, srv, 1, 2, 3)
	submitted, err := srv.Submit(ctx, 4, 0, 0)
	require.NoError(t, err)
	require.True(t, srv.BlockTask(ctx, ids[1]))

	testCases := []struct {
		description string
		id          task.ID
	}{
		{description: "ready", id: ids[0]},
		{description: "blocked", id: ids[1]},
		{description: "new", id: submitted},
	}
	for _, testCase := range testCases {
		assert.True(t, srv.DestroyTask(ctx, testCase.id), testCase.description)
		assert.False(t, srv.DestroyTask(ctx, testCase.id), testCase.description)
		_, ok := srv.Task(ctx, testCase.id)
		assert.False(t, ok, testCase.description)
		_, ok = srv.Allocator().Region(testCase.id)
		assert.False(t, ok, testCase.description)
	}
	assert.Equal(t, []task.ID{ids[2]}, srv.ReadyQueue())
	assert.Empty(t, srv.BlockedQueue())
	assert.Empty(t, srv.NewQueue())
	assert.Equal(t, 3, srv.Progress().DestroyedTasks)
}

func TestService_ChangePriority(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	ids := createAll(t, srv, 1)
	assert.True(t, srv.ChangePriority(ctx, ids[0], 7))
	assert.False(t, srv.ChangePriority(ctx, 99, 7))
	aTask, _ := srv.Task(ctx, ids[0])
	assert.Equal(t, 7, aTask.Priority)
	assert.Equal(t, []task.ID{ids[0]}, srv.ReadyQueue())
}

func TestService_Events(t *testing.T) {
	events, err := event.New(messaging.VendorMemory, event.WithInstanceID("kernel-1"))
	require.NoError(t, err)
	srv := newKernel(t, WithEventService(events))
	ctx := context.Background()
	assert.Equal(t, "kernel-1", srv.InstanceID())

	ids := createAll(t, srv, 2)
	_, err = srv.DispatchOne(ctx, scheduler.NameFCFS)
	require.NoError(t, err)

	publisher, err := event.PublisherOf[Event](events)
	require.NoError(t, err)
	var types []EventType
	for _, e := range publisher.Drain() {
		assert.Equal(t, ids[0], e.Data.TaskID)
		assert.Equal(t, "kernel-1", e.Context.InstanceID)
		types = append(types, e.Data.Type)
	}
	assert.Equal(t, []EventType{EventCreated, EventProcessing, EventTerminated}, types)
	assert.Equal(t, "Task 1 terminated: Processing -> Terminated", Event{Type: EventTerminated, TaskID: 1, From: task.StateProcessing, To: task.StateTerminated}.String())

	sources := map[string]int{}
	for _, e := range events.Drain() {
		sources[e.Context.Source]++
	}
	assert.Equal(t, 3, sources["kernel"])
	assert.Positive(t, sources["flux"])
}

func TestService_Concurrent(t *testing.T) {
	srv := newKernel(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(burst int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := srv.CreateTask(ctx, burst, j, 0)
				assert.NoError(t, err)
			}
		}(i + 1)
	}
	wg.Wait()
	assert.Len(t, srv.ReadyQueue(), 80)

	count, err := srv.DispatchAll(ctx, scheduler.NameSJF)
	require.NoError(t, err)
	assert.Equal(t, 80, count)
	assert.Empty(t, srv.Tasks(ctx))
}
