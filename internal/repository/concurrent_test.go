package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_PlacementUpdatesDuringReads runs placement updates
// from many goroutines while readers list the project's tasks. WAL mode and
// the busy timeout must keep every call error free.
func TestConcurrentAccess_PlacementUpdatesDuringReads(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()

	projects := NewSQLiteProjectRepo(database)
	tasks := NewSQLiteTaskRepo(database)

	u := testutil.NewTestUser()
	require.NoError(t, NewSQLiteUserRepo(database).Create(ctx, u))
	proj := testutil.NewTestProject(u.ID, "Concurrent")
	require.NoError(t, projects.Create(ctx, proj))

	const taskCount = 20
	batch := make([]domain.Task, 0, taskCount)
	for i := 0; i < taskCount; i++ {
		batch = append(batch, testutil.NewTestTask(proj.ID, fmt.Sprintf("Task-%d", i), testutil.WithDisplayOrder(i)))
	}
	require.NoError(t, tasks.CreateBatch(ctx, batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Reverse the order.
			if _, err := tasks.UpdatePlacement(ctx, proj.ID, batch[i].ID, taskCount-1-i, nil); err != nil {
				t.Errorf("update %d: %v", i, err)
			}
		}(i)
	}
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			got, err := tasks.ListByProject(ctx, proj.ID)
			if err != nil {
				t.Errorf("reader %d: %v", reader, err)
				return
			}
			if len(got) != taskCount {
				t.Errorf("reader %d: got %d tasks", reader, len(got))
			}
		}(r)
	}
	wg.Wait()

	got, err := tasks.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, got, taskCount)
	assert.Equal(t, fmt.Sprintf("Task-%d", taskCount-1), got[0].Title)
	assert.Equal(t, "Task-0", got[taskCount-1].Title)
}
