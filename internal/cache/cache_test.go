package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_putAndGet(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	clientID := int64(3)
	tasks := []models.Task{
		{TaskID: 1, TaskType: "create_strategy", ClientID: &clientID},
		{TaskID: 2, TaskType: "smo_scheduling", ClientID: &clientID, IsCompleted: true},
	}
	require.NoError(t, s.PutTasks(ctx, clientID, tasks))

	got, fetchedAt, ok, err := s.GetTasks(ctx, clientID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tasks, got)
	assert.False(t, fetchedAt.IsZero())
}

func TestStore_getMissingClient(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	_, _, ok, err := s.GetTasks(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_putReplacesPriorList(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutTasks(ctx, 1, []models.Task{{TaskID: 1, TaskType: "onboarding"}, {TaskID: 2, TaskType: "approve_proposal"}}))
	require.NoError(t, s.PutTasks(ctx, 1, []models.Task{{TaskID: 2, TaskType: "invoice_submission"}}))

	got, _, ok, err := s.GetTasks(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "invoice_submission", got[0].TaskType)
}

func TestStore_invalidateClient(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutTasks(ctx, 1, []models.Task{{TaskID: 1, TaskType: "onboarding"}}))
	require.NoError(t, s.PutTasks(ctx, 2, []models.Task{{TaskID: 2, TaskType: "onboarding"}}))
	require.NoError(t, s.InvalidateClient(ctx, 1))

	_, _, ok, err := s.GetTasks(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// The other client's cache is untouched.
	_, _, ok, err = s.GetTasks(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_purge(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutTasks(ctx, 1, []models.Task{{TaskID: 1, TaskType: "onboarding"}}))
	require.NoError(t, s.Purge(ctx))
	_, _, ok, err := s.GetTasks(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
