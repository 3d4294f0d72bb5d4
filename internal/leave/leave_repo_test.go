package leave_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Waihonggg/leave-app-system/internal/leave"
	"github.com/Waihonggg/leave-app-system/internal/sheet"
)

const appSheet = "Leave Application"

var appHeader = []string{"ID", "Username", "Leave Type", "Start Date", "End Date", "Days", "Reason", "Status"}

func newAppStore(t *testing.T, rows ...[]string) *sheet.MemStore {
	t.Helper()
	store := sheet.NewMemStore()
	all := append([][]string{appHeader}, rows...)
	store.Seed(appSheet, all)
	return store
}

func TestLeaveRepo_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates max id plus one", func(t *testing.T) {
		store := newAppStore(t,
			[]string{"1", "alice", "Annual", "2025-01-06", "2025-01-07", "2", "", "Approved"},
			[]string{"7", "bob", "MC", "2025-02-03", "2025-02-03", "1", "", "Pending"},
		)
		repo := leave.NewRepository(store, appSheet)

		app := &leave.Application{
			Username:  "alice",
			LeaveType: "Annual",
			StartDate: date("2025-03-03"),
			EndDate:   date("2025-03-05"),
			Days:      3,
			Status:    leave.StatusPending,
		}
		err := repo.Append(ctx, app)
		assert.NoError(t, err)
		assert.Equal(t, 8, app.ID)
		assert.Equal(t, 4, app.SheetRow)

		rows, err := store.Rows(ctx, appSheet)
		assert.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("first application gets id one", func(t *testing.T) {
		store := newAppStore(t)
		repo := leave.NewRepository(store, appSheet)

		app := &leave.Application{
			Username:  "alice",
			LeaveType: "Annual",
			StartDate: date("2025-03-03"),
			EndDate:   date("2025-03-03"),
			Days:      1,
			Status:    leave.StatusPending,
		}
		assert.NoError(t, repo.Append(ctx, app))
		assert.Equal(t, 1, app.ID)
	})

	t.Run("concurrent appends never share an id", func(t *testing.T) {
		store := newAppStore(t)
		repo := leave.NewRepository(store, appSheet)

		const workers = 10
		ids := make(chan int, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				app := &leave.Application{
					Username:  "user" + strconv.Itoa(n),
					LeaveType: "Annual",
					StartDate: date("2025-03-03"),
					EndDate:   date("2025-03-03"),
					Days:      1,
					Status:    leave.StatusPending,
				}
				if err := repo.Append(context.Background(), app); err == nil {
					ids <- app.ID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		seen := make(map[int]bool)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d allocated", id)
			seen[id] = true
		}
		assert.Len(t, seen, workers)
	})
}

func TestLeaveRepo_FindByRow(t *testing.T) {
	ctx := context.Background()
	store := newAppStore(t,
		[]string{"3", "alice", "Annual", "2025-03-03", "2025-03-05", "3", "trip", "Pending"},
	)
	repo := leave.NewRepository(store, appSheet)

	t.Run("found", func(t *testing.T) {
		app, err := repo.FindByRow(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, 3, app.ID)
		assert.Equal(t, "alice", app.Username)
		assert.Equal(t, leave.StatusPending, app.Status)
		assert.Equal(t, 2, app.SheetRow)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := repo.FindByRow(ctx, 9)
		assert.ErrorIs(t, err, sheet.ErrRowOutOfRange)
	})

	t.Run("header row is not addressable", func(t *testing.T) {
		_, err := repo.FindByRow(ctx, 1)
		assert.ErrorIs(t, err, sheet.ErrRowOutOfRange)
	})
}

func TestLeaveRepo_ListByUser(t *testing.T) {
	ctx := context.Background()
	store := newAppStore(t,
		[]string{"1", "alice", "Annual", "2025-01-06", "2025-01-07", "2", "", "Approved"},
		[]string{"2", "bob", "MC", "2025-02-03", "2025-02-03", "1", "", "Pending"},
		[]string{"3", "Alice ", "MC", "2025-02-10", "2025-02-10", "1", "", "Pending"},
	)
	repo := leave.NewRepository(store, appSheet)

	apps, err := repo.ListByUser(ctx, "ALICE")
	assert.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.Equal(t, 1, apps[0].ID)
	assert.Equal(t, 3, apps[1].ID)
}

func TestLeaveRepo_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := newAppStore(t,
		[]string{"1", "alice", "Annual", "2025-03-03", "2025-03-05", "3", "", "Pending"},
	)
	repo := leave.NewRepository(store, appSheet)

	assert.NoError(t, repo.UpdateStatus(ctx, 2, leave.StatusApproved))

	app, err := repo.FindByRow(ctx, 2)
	assert.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, app.Status)
	// status mutates in place, nothing else changes
	assert.Equal(t, 1, app.ID)
	assert.Equal(t, 3, app.Days)
}
