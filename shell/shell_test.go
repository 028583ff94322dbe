package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ossim "github.com/farxan99/OsSimulator"
	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/allocator"
	"github.com/farxan99/OsSimulator/service/kernel"
)

func newShell(t *testing.T, opts ...Option) (*Shell, *bytes.Buffer) {
	t.Helper()
	cfg := ossim.DefaultConfig()
	cfg.Memory.PageSize = 1024
	cfg.Memory.TotalCapacity = 4096
	srv, err := ossim.New(ossim.WithConfig(cfg), ossim.WithMetaBaseURL(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	var out bytes.Buffer
	return New(srv, &out, opts...), &out
}

func TestShell_Lifecycle(t *testing.T) {
	sh, out := newShell(t)
	ctx := context.Background()
	script := `
create 5 1
create 2
create 2
submit 9
block 1
suspend 1
wakeup 1
priority 2 7
admit
dispatch SJF
show tasks
`
	require.NoError(t, sh.Run(ctx, []byte(script)))
	output := out.String()
	assert.Contains(t, output, "Task ID: 1, State: Ready, Owner: User, Priority: 1, Burst Time: 5, Arrival Time: 0")
	assert.Contains(t, output, "block 1: applied")
	assert.Contains(t, output, "suspend 1: no-op")
	assert.Contains(t, output, "wakeup 1: applied")
	assert.Contains(t, output, "Admitted 1 task(s)")
	assert.Contains(t, output, "Dispatched Task ID: 2, State: Terminated")

	k := sh.kernel
	assert.Equal(t, []task.ID{3, 1, 4}, k.ReadyQueue())
	_, ok := k.Task(ctx, 2)
	assert.False(t, ok)
}

func TestShell_RunAndViews(t *testing.T) {
	sh, out := newShell(t, WithProgress(true))
	ctx := context.Background()
	script := `
spawn 12 4
provision 99 3000
show cache
show regions
select FCFS
run SJF
show stats
evict
`
	require.NoError(t, sh.Run(ctx, []byte(script)))
	output := out.String()
	assert.Contains(t, output, "Spawned 12 task(s) with 4 worker(s)")
	assert.Contains(t, output, "Provisioned 3 cell(s) for 99")
	assert.Contains(t, output, "4/4 frames")
	assert.Contains(t, output, "Selected Task ID: 1")
	assert.Contains(t, output, "Dispatched 11 task(s) with SJF")
	assert.Contains(t, output, "Flux Shift: Expelled")
	assert.Empty(t, sh.kernel.ReadyQueue())
	tasks := sh.kernel.Tasks(ctx)
	require.Len(t, tasks, 1, "selected task stays in the table")
	assert.Equal(t, task.ID(1), tasks[0].ID)
}

func TestShell_Errors(t *testing.T) {
	sh, _ := newShell(t)
	ctx := context.Background()
	testCases := []struct {
		description string
		script      string
		expect      string
	}{
		{description: "unknown command", script: "launch 1", expect: "unknown command"},
		{description: "missing argument", script: "create", expect: "missing argument"},
		{description: "not an integer", script: "destroy abc", expect: "not an integer"},
		{description: "unknown view", script: "show files", expect: "unknown view"},
	}
	for _, testCase := range testCases {
		err := sh.Run(ctx, []byte(testCase.script))
		require.Error(t, err, testCase.description)
		assert.Contains(t, err.Error(), testCase.expect, testCase.description)
	}
	err := sh.Run(ctx, []byte("dispatch RR"))
	assert.ErrorIs(t, err, kernel.ErrUnknownAlgorithm)
	err = sh.Run(ctx, []byte("provision 1 9223372036854775807"))
	assert.ErrorIs(t, err, allocator.ErrInvalidMagnitude)
}

func TestShell_RegionResidency(t *testing.T) {
	sh, out := newShell(t)
	ctx := context.Background()
	require.NoError(t, sh.Run(ctx, []byte("create 1\ncreate 2\nshow regions\n")))
	regions := sh.kernel.Allocator().Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, 0, sh.resident(regions[0]))
	assert.Equal(t, 4, sh.resident(regions[1]))
	assert.Contains(t, out.String(), "== regions ==")
}

func TestShell_TraceAndSave(t *testing.T) {
	sh, out := newShell(t, WithTrace(true))
	ctx := context.Background()
	require.NoError(t, sh.Run(ctx, []byte("create 3\ntrace off\ncreate 4\nsave snapshot.json\n")))
	lines := strings.Split(out.String(), "\n")
	var events int
	for _, line := range lines {
		if strings.HasPrefix(line, "{") {
			events++
			assert.Contains(t, line, `"context"`)
		}
	}
	assert.Positive(t, events)
	assert.Contains(t, out.String(), "Saved snapshot to snapshot.json")

	data, ok, err := sh.service.Meta().Load(ctx, "snapshot.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(data), `"pageSize":1024`)
	assert.Contains(t, string(data), `"ready":[1,2]`)
}

func TestShell_RunURL(t *testing.T) {
	sh, out := newShell(t)
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "demo.ossim")
	require.NoError(t, sh.service.Meta().Upload(ctx, location, []byte("create 1\nrun\n")))
	require.NoError(t, sh.RunURL(ctx, location))
	assert.Contains(t, out.String(), "Dispatched 1 task(s) with FCFS")
	assert.Error(t, sh.RunURL(ctx, location+".missing"))
}
