package leave_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Waihonggg/leave-app-system/internal/config"
	"github.com/Waihonggg/leave-app-system/internal/events"
	"github.com/Waihonggg/leave-app-system/internal/ledger"
	"github.com/Waihonggg/leave-app-system/internal/leave"
	leaveerrors "github.com/Waihonggg/leave-app-system/internal/leave/errors"
	"github.com/Waihonggg/leave-app-system/internal/notify"
	"github.com/Waihonggg/leave-app-system/internal/sheet"
)

const dataSheet = "Leave Data"

func dataHeader() []string {
	h := make([]string, ledger.ColumnCount)
	h[ledger.ColUsername] = "Username"
	return h
}

func userRow(username, password, email, manager string, total, taken, mcBalance int) []string {
	row := make([]string, ledger.ColumnCount)
	row[ledger.ColUsername] = username
	row[ledger.ColPassword] = password
	row[ledger.ColEmail] = email
	row[ledger.ColManager] = manager
	row[ledger.ColCarryForward] = "0"
	row[ledger.ColAnnualLeave] = strconv.Itoa(total)
	row[ledger.ColCompassionateLeave] = "0"
	row[ledger.ColTotalLeave] = strconv.Itoa(total)
	for m := 1; m <= 12; m++ {
		row[ledger.MonthLeaveCol(m)] = "0"
		row[ledger.MonthMCCol(m)] = "0"
	}
	row[ledger.ColLeaveTaken] = strconv.Itoa(taken)
	row[ledger.ColLeaveBalance] = strconv.Itoa(total - taken)
	row[ledger.ColMCTaken] = "0"
	row[ledger.ColMCBalance] = strconv.Itoa(mcBalance)
	return row
}

type fakeMailer struct {
	mu          sync.Mutex
	submissions []notify.SubmissionMail
	submitTo    []string
	decisions   []notify.DecisionMail
	decisionTo  []string
	err         error
}

func (f *fakeMailer) SendSubmission(ctx context.Context, to string, m notify.SubmissionMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.submitTo = append(f.submitTo, to)
	f.submissions = append(f.submissions, m)
	return nil
}

func (f *fakeMailer) SendDecision(ctx context.Context, to string, m notify.DecisionMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.decisionTo = append(f.decisionTo, to)
	f.decisions = append(f.decisions, m)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type serviceDeps struct {
	store      *sheet.MemStore
	ledgerRepo ledger.Repository
	repo       leave.Repository
	mailer     *fakeMailer
	publisher  *fakePublisher
	service    leave.Service
}

func defaultPolicies() leave.Policies {
	return leave.Policies{
		ExcludeWeekends:     true,
		AllowStatusReversal: false,
		ReservationPolicy:   config.ReservationConfirmed,
		BaseURL:             "http://localhost:3000",
	}
}

func setupService(t *testing.T, pol leave.Policies, users ...[]string) *serviceDeps {
	t.Helper()

	store := sheet.NewMemStore()
	store.Seed(dataSheet, append([][]string{dataHeader()}, users...))
	store.Seed(appSheet, [][]string{appHeader})

	ledgerRepo := ledger.NewRepository(store, dataSheet)
	repo := leave.NewRepository(store, appSheet)
	mailer := &fakeMailer{}
	publisher := &fakePublisher{}
	svc := leave.NewService(repo, ledgerRepo, mailer, publisher, pol)

	return &serviceDeps{
		store:      store,
		ledgerRepo: ledgerRepo,
		repo:       repo,
		mailer:     mailer,
		publisher:  publisher,
		service:    svc,
	}
}

func seedUsers() [][]string {
	return [][]string{
		userRow("alice", "secret", "alice@example.com", "bob", 14, 0, 14),
		userRow("bob", "hunter2", "bob@example.com", "", 20, 0, 14),
	}
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending application and notifies manager", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)

		app, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual",
			StartDate: "2025-03-03",
			EndDate:   "2025-03-05",
			Reason:    "family trip",
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, app.ID)
		assert.Equal(t, 3, app.Days)
		assert.Equal(t, leave.StatusPending, app.Status)

		// confirmed policy: nothing booked yet
		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 14, row.LeaveBalance)
		assert.Equal(t, 0, row.Usage(time.March).Leave)

		// manager resolved through the ledger back-reference
		assert.Equal(t, []string{"bob@example.com"}, deps.mailer.submitTo)
		assert.Contains(t, deps.mailer.submissions[0].ApproveURL, "row=2")
		assert.Contains(t, deps.mailer.submissions[0].ApproveURL, "id=1")

		assert.Len(t, deps.publisher.events, 1)
		assert.Equal(t, events.TypeSubmitted, deps.publisher.events[0].Type)
	})

	t.Run("ids are sequential", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)

		first, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-03",
		})
		assert.NoError(t, err)
		second, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-04-01", EndDate: "2025-04-01",
		})
		assert.NoError(t, err)
		assert.Equal(t, first.ID+1, second.ID)
	})

	t.Run("single day on saturday is rejected before any write", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)

		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-08", EndDate: "2025-03-08",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrWeekendSingleDay)

		rows, err := deps.store.Rows(ctx, appSheet)
		assert.NoError(t, err)
		assert.Len(t, rows, 1) // header only
	})

	t.Run("weekend-only range is rejected", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-08", EndDate: "2025-03-09",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrWeekendOnly)
	})

	t.Run("end before start", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-05", EndDate: "2025-03-03",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("bad date format", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "03/03/2025", EndDate: "2025-03-05",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(),
			userRow("alice", "secret", "alice@example.com", "bob", 14, 13, 14),
			userRow("bob", "hunter2", "bob@example.com", "", 20, 0, 14),
		)
		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
	})

	t.Run("insufficient mc balance", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(),
			userRow("alice", "secret", "alice@example.com", "bob", 14, 0, 1),
			userRow("bob", "hunter2", "bob@example.com", "", 20, 0, 14),
		)
		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "MC", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientMCBalance)
	})

	t.Run("unknown user", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		_, err := deps.service.Submit(ctx, "mallory", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrUserNotFound)
	})

	t.Run("missing manager degrades to a skipped notification", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(),
			userRow("carol", "pw", "carol@example.com", "", 14, 0, 14),
		)
		app, err := deps.service.Submit(ctx, "carol", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-03",
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, app.ID)
		assert.Empty(t, deps.mailer.submitTo)
	})

	t.Run("mail failure never fails the submit", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		deps.mailer.err = errors.New("smtp down")

		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)
	})

	t.Run("unconfigured mailer never fails the submit", func(t *testing.T) {
		store := sheet.NewMemStore()
		store.Seed(dataSheet, append([][]string{dataHeader()}, seedUsers()...))
		store.Seed(appSheet, [][]string{appHeader})
		svc := leave.NewService(
			leave.NewRepository(store, appSheet),
			ledger.NewRepository(store, dataSheet),
			notify.NewSMTPMailer("", 0, "", "", ""),
			events.NopPublisher{},
			defaultPolicies(),
		)
		_, err := svc.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)
	})

	t.Run("event publish failure never fails the submit", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		deps.publisher.err = errors.New("broker down")

		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)
	})

	t.Run("optimistic policy reserves at submission", func(t *testing.T) {
		pol := defaultPolicies()
		pol.ReservationPolicy = config.ReservationOptimistic
		deps := setupService(t, pol, seedUsers()...)

		_, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)

		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 11, row.LeaveBalance)
		assert.Equal(t, 3, row.Usage(time.March).Leave)
	})

	t.Run("concurrent submissions allocate distinct ids", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(),
			userRow("alice", "secret", "alice@example.com", "bob", 100, 0, 50),
			userRow("bob", "hunter2", "bob@example.com", "", 20, 0, 14),
		)

		const workers = 8
		ids := make(chan int, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				app, err := deps.service.Submit(context.Background(), "alice", leave.ApplyLeaveRequest{
					LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-03",
				})
				if assert.NoError(t, err) {
					ids <- app.ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[int]bool)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, workers)
	})
}

func TestLeaveService_Decide(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, deps *serviceDeps) *leave.Application {
		t.Helper()
		app, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)
		return app
	}

	t.Run("approval books the days and notifies the applicant", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		result, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, leave.StatusApproved, result.Application.Status)

		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 3, row.LeaveTaken)
		assert.Equal(t, 11, row.LeaveBalance)
		assert.Equal(t, 3, row.Usage(time.March).Leave)

		assert.Equal(t, []string{"alice@example.com"}, deps.mailer.decisionTo)
		assert.Equal(t, leave.StatusApproved, deps.mailer.decisions[0].Status)
	})

	t.Run("rejection from pending leaves the ledger untouched", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		result, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionReject)
		assert.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, leave.StatusRejected, result.Application.Status)

		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 14, row.LeaveBalance)
	})

	t.Run("second identical decision is an idempotent no-op", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		first, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)
		assert.True(t, first.Changed)

		second, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)
		assert.False(t, second.Changed)
		assert.Contains(t, second.Message, "already")

		// ledger mutated exactly once
		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 3, row.LeaveTaken)
		assert.Equal(t, 11, row.LeaveBalance)
	})

	t.Run("id mismatch mutates nothing", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		_, err := deps.service.Decide(ctx, app.SheetRow, app.ID+41, leave.ActionApprove)
		assert.ErrorIs(t, err, leaveerrors.ErrApplicationMismatch)

		got, err := deps.repo.FindByRow(ctx, app.SheetRow)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusPending, got.Status)
	})

	t.Run("unknown row", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		_, err := deps.service.Decide(ctx, 42, 1, leave.ActionApprove)
		assert.ErrorIs(t, err, leaveerrors.ErrApplicationNotFound)
	})

	t.Run("reversal is refused by default", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		_, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)

		_, err = deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionReject)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidTransition)
	})

	t.Run("reversal credits the days back when allowed", func(t *testing.T) {
		pol := defaultPolicies()
		pol.AllowStatusReversal = true
		deps := setupService(t, pol, seedUsers()...)
		app := submit(t, deps)

		_, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)

		result, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionReject)
		assert.NoError(t, err)
		assert.True(t, result.Changed)

		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 0, row.LeaveTaken)
		assert.Equal(t, 14, row.LeaveBalance)
		assert.Equal(t, 0, row.Usage(time.March).Leave)
	})

	t.Run("optimistic rejection credits the reservation back", func(t *testing.T) {
		pol := defaultPolicies()
		pol.ReservationPolicy = config.ReservationOptimistic
		deps := setupService(t, pol, seedUsers()...)
		app := submit(t, deps)

		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 11, row.LeaveBalance)

		_, err = deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionReject)
		assert.NoError(t, err)

		row, err = deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 14, row.LeaveBalance)
		assert.Equal(t, 0, row.Usage(time.March).Leave)
	})

	t.Run("mc approval books against the mc counters", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "MC", StartDate: "2025-03-04", EndDate: "2025-03-04",
		})
		assert.NoError(t, err)

		_, err = deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)

		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 1, row.MCTaken)
		assert.Equal(t, 13, row.MCBalance)
		assert.Equal(t, 1, row.Usage(time.March).MC)
		assert.Equal(t, 14, row.LeaveBalance)
	})
}

// brokenLedgerStore fails every cell update on the named sheet, so the ledger
// write inside a workflow fails while the application log keeps working.
type brokenLedgerStore struct {
	sheet.Store
	failSheet string
}

func (s *brokenLedgerStore) UpdateCells(ctx context.Context, sheetName string, rowNum int, cells map[int]string) error {
	if sheetName == s.failSheet {
		return errors.New("workbook save failed")
	}
	return s.Store.UpdateCells(ctx, sheetName, rowNum, cells)
}

func setupBrokenLedger(t *testing.T, pol leave.Policies) (leave.Service, leave.Repository, ledger.Repository) {
	t.Helper()

	mem := sheet.NewMemStore()
	mem.Seed(dataSheet, append([][]string{dataHeader()}, seedUsers()...))
	mem.Seed(appSheet, [][]string{appHeader})
	store := &brokenLedgerStore{Store: mem, failSheet: dataSheet}

	repo := leave.NewRepository(store, appSheet)
	ledgerRepo := ledger.NewRepository(store, dataSheet)
	svc := leave.NewService(repo, ledgerRepo, &fakeMailer{}, &fakePublisher{}, pol)
	return svc, repo, ledgerRepo
}

func TestLeaveService_Compensation(t *testing.T) {
	ctx := context.Background()

	t.Run("failed ledger write rolls the status back to pending", func(t *testing.T) {
		svc, repo, ledgerRepo := setupBrokenLedger(t, defaultPolicies())

		// confirmed policy: submission touches no ledger cell, so it succeeds
		app, err := svc.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)

		_, err = svc.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.Error(t, err)

		got, err := repo.FindByRow(ctx, app.SheetRow)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusPending, got.Status)

		row, err := ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 0, row.LeaveTaken)
		assert.Equal(t, 14, row.LeaveBalance)
	})

	t.Run("failed optimistic reservation cancels the appended row", func(t *testing.T) {
		pol := defaultPolicies()
		pol.ReservationPolicy = config.ReservationOptimistic
		svc, repo, ledgerRepo := setupBrokenLedger(t, pol)

		_, err := svc.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.Error(t, err)

		// the row was appended before the reservation failed; it must not
		// survive as Pending
		got, err := repo.FindByRow(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, 1, got.ID)
		assert.Equal(t, leave.StatusCancelled, got.Status)

		row, err := ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 14, row.LeaveBalance)
	})

	t.Run("failed rejection reversal restores the approved status", func(t *testing.T) {
		pol := defaultPolicies()
		pol.AllowStatusReversal = true
		deps := setupService(t, pol, seedUsers()...)

		app, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)
		_, err = deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)

		// break the ledger only now, after approval booked the days
		broken := &brokenLedgerStore{Store: deps.store, failSheet: dataSheet}
		svc := leave.NewService(
			leave.NewRepository(broken, appSheet),
			ledger.NewRepository(broken, dataSheet),
			deps.mailer, deps.publisher, pol,
		)

		_, err = svc.Decide(ctx, app.SheetRow, app.ID, leave.ActionReject)
		assert.Error(t, err)

		got, err := deps.repo.FindByRow(ctx, app.SheetRow)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, got.Status)
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, deps *serviceDeps) *leave.Application {
		t.Helper()
		app, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
			LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05",
		})
		assert.NoError(t, err)
		return app
	}

	t.Run("owner cancels a pending application", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		err := deps.service.Cancel(ctx, "alice", leave.CancelLeaveRequest{
			ApplicationID: app.ID, RowNumber: app.SheetRow,
		})
		assert.NoError(t, err)

		got, err := deps.repo.FindByRow(ctx, app.SheetRow)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, got.Status)
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		err := deps.service.Cancel(ctx, "bob", leave.CancelLeaveRequest{
			ApplicationID: app.ID, RowNumber: app.SheetRow,
		})
		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
	})

	t.Run("decided applications cannot be cancelled", func(t *testing.T) {
		deps := setupService(t, defaultPolicies(), seedUsers()...)
		app := submit(t, deps)

		_, err := deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
		assert.NoError(t, err)

		err = deps.service.Cancel(ctx, "alice", leave.CancelLeaveRequest{
			ApplicationID: app.ID, RowNumber: app.SheetRow,
		})
		assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	})

	t.Run("optimistic cancellation releases the reservation", func(t *testing.T) {
		pol := defaultPolicies()
		pol.ReservationPolicy = config.ReservationOptimistic
		deps := setupService(t, pol, seedUsers()...)
		app := submit(t, deps)

		err := deps.service.Cancel(ctx, "alice", leave.CancelLeaveRequest{
			ApplicationID: app.ID, RowNumber: app.SheetRow,
		})
		assert.NoError(t, err)

		row, err := deps.ledgerRepo.Get(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, 14, row.LeaveBalance)
	})
}

func TestLeaveService_LeaveData(t *testing.T) {
	ctx := context.Background()
	deps := setupService(t, defaultPolicies(), seedUsers()...)

	app, err := deps.service.Submit(ctx, "alice", leave.ApplyLeaveRequest{
		LeaveType: "Annual", StartDate: "2025-03-03", EndDate: "2025-03-05", Reason: "trip",
	})
	assert.NoError(t, err)
	_, err = deps.service.Decide(ctx, app.SheetRow, app.ID, leave.ActionApprove)
	assert.NoError(t, err)

	data, err := deps.service.LeaveData(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "alice", data.Username)
	assert.Equal(t, 14, data.TotalLeave)
	assert.Equal(t, 3, data.LeaveTaken)
	assert.Equal(t, 11, data.LeaveBalance)
	assert.Len(t, data.MonthlyData, 12)
	assert.Equal(t, leave.MonthBreakdown{Leave: 3, MC: 0}, data.MonthlyData["March"])

	assert.Len(t, data.Applications, 1)
	assert.Equal(t, app.ID, data.Applications[0].ID)
	assert.Equal(t, leave.StatusApproved, data.Applications[0].Status)
	assert.Equal(t, app.SheetRow, data.Applications[0].RowNumber)

	t.Run("unknown user", func(t *testing.T) {
		_, err := deps.service.LeaveData(ctx, "mallory")
		assert.ErrorIs(t, err, leaveerrors.ErrUserNotFound)
	})
}
