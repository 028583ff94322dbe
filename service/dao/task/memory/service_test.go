package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxan99/OsSimulator/model/task"
	"github.com/farxan99/OsSimulator/service/dao"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := New()

	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, srv.Save(ctx, &task.Task{}), dao.ErrInvalidID)
	_, err := srv.Load(ctx, 0)
	assert.ErrorIs(t, err, dao.ErrInvalidID)

	require.NoError(t, srv.Save(ctx, task.New(2, task.StateNew, "", 0, 3, 0, now)))
	require.NoError(t, srv.Save(ctx, task.New(1, task.StateReady, "", 0, 5, 0, now)))
	require.NoError(t, srv.Save(ctx, task.New(3, task.StateSuspended, "System", 0, 1, 0, now)))
	assert.Equal(t, 3, srv.Len())

	loaded, err := srv.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, task.StateReady, loaded.State)

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      []task.ID
	}{
		{description: "all ordered by id", expect: []task.ID{1, 2, 3}},
		{description: "by state", parameters: []*dao.Parameter{dao.StateParameter("New")}, expect: []task.ID{2}},
		{description: "waiting family", parameters: []*dao.Parameter{dao.StateParameter("Blocked", "Suspended")}, expect: []task.ID{3}},
		{description: "by owner", parameters: []*dao.Parameter{dao.OwnerParameter(task.DefaultOwner)}, expect: []task.ID{1, 2}},
	}
	for _, testCase := range testCases {
		tasks, err := srv.List(ctx, testCase.parameters...)
		require.NoError(t, err)
		var ids []task.ID
		for _, item := range tasks {
			ids = append(ids, item.ID)
		}
		assert.Equal(t, testCase.expect, ids, testCase.description)
	}

	require.NoError(t, srv.Delete(ctx, 2))
	assert.ErrorIs(t, srv.Delete(ctx, 2), dao.ErrNotFound)
	_, err = srv.Load(ctx, 2)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
