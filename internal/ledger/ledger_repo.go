package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Waihonggg/leave-app-system/internal/sheet"
)

var ErrUserNotFound = errors.New("user not found in leave data sheet")

// Repository resolves usernames to ledger rows and mutates the per-user
// counters. Lookups go through a cached username index rather than a linear
// scan per call; the index is invalidated on every write.
type Repository interface {
	Get(ctx context.Context, username string) (*Row, error)
	UpdateFields(ctx context.Context, username string, cells map[int]string) error
	ApplyUsage(ctx context.Context, username string, month time.Month, kind Kind, days int) (*Row, error)
	Invalidate()
}

type repository struct {
	store     sheet.Store
	sheetName string
	logger    *zap.Logger

	mu    sync.Mutex
	cache map[string]Row
	group singleflight.Group

	locks *keyedMutex
}

func NewRepository(store sheet.Store, sheetName string, logger ...*zap.Logger) Repository {
	l := zap.L().Named("ledger.repo")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ledger.repo")
	}
	return &repository{
		store:     store,
		sheetName: sheetName,
		logger:    l,
		locks:     newKeyedMutex(),
	}
}

// normalize is the username key rule: trimmed, case-insensitive.
func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *repository) Get(ctx context.Context, username string) (*Row, error) {
	idx, err := r.index(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := idx[normalize(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := row
	return &cp, nil
}

func (r *repository) UpdateFields(ctx context.Context, username string, cells map[int]string) error {
	unlock := r.locks.Lock(normalize(username))
	defer unlock()
	return r.updateFieldsLocked(ctx, username, cells)
}

func (r *repository) updateFieldsLocked(ctx context.Context, username string, cells map[int]string) error {
	row, err := r.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := r.store.UpdateCells(ctx, r.sheetName, row.SheetRow, cells); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// ApplyUsage books days (positive) or releases them (negative) against the
// month counter and running totals, holding the per-user lock across the
// whole read-modify-write. The leave balance is re-derived from the total
// entitlement so the persisted invariant cannot drift.
func (r *repository) ApplyUsage(ctx context.Context, username string, month time.Month, kind Kind, days int) (*Row, error) {
	unlock := r.locks.Lock(normalize(username))
	defer unlock()

	// Fresh read inside the lock; the cache may predate another writer.
	r.Invalidate()
	row, err := r.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	usage := row.Usage(month)
	cells := make(map[int]string, 3)
	switch kind {
	case KindMC:
		usage.MC += days
		row.MCTaken += days
		row.MCBalance -= days
		cells[MonthMCCol(int(month))] = strconv.Itoa(usage.MC)
		cells[ColMCTaken] = strconv.Itoa(row.MCTaken)
		cells[ColMCBalance] = strconv.Itoa(row.MCBalance)
	default:
		usage.Leave += days
		row.LeaveTaken += days
		row.LeaveBalance = row.TotalLeave - row.LeaveTaken
		cells[MonthLeaveCol(int(month))] = strconv.Itoa(usage.Leave)
		cells[ColLeaveTaken] = strconv.Itoa(row.LeaveTaken)
		cells[ColLeaveBalance] = strconv.Itoa(row.LeaveBalance)
	}
	row.Months[int(month)-1] = usage

	if err := r.store.UpdateCells(ctx, r.sheetName, row.SheetRow, cells); err != nil {
		return nil, err
	}
	r.Invalidate()

	r.logger.Debug("ledger usage applied",
		zap.String("username", row.Username),
		zap.Int("month", int(month)),
		zap.Int("days", days),
		zap.Bool("mc", kind == KindMC),
	)
	return row, nil
}

func (r *repository) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

// index returns the username index, rebuilding it at most once across
// concurrent callers.
func (r *repository) index(ctx context.Context) (map[string]Row, error) {
	r.mu.Lock()
	cached := r.cache
	r.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := r.group.Do("index", func() (any, error) {
		rows, err := r.store.Rows(ctx, r.sheetName)
		if err != nil {
			return nil, err
		}
		idx := make(map[string]Row, len(rows))
		for i, cells := range rows {
			if i == 0 {
				continue // header
			}
			row := parseRow(i+1, cells)
			if row.Username == "" {
				continue
			}
			idx[normalize(row.Username)] = row
		}
		r.mu.Lock()
		r.cache = idx
		r.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]Row), nil
}
