package leave

import (
	"context"
	"strings"
	"sync"

	"github.com/Waihonggg/leave-app-system/internal/sheet"
)

// Repository is the append-only application log. Append allocates the next id
// as max(existing ids)+1; the allocation and the append happen under one repo
// mutex so two concurrent submissions can never observe the same maximum.
type Repository interface {
	Append(ctx context.Context, app *Application) error
	FindByRow(ctx context.Context, rowNum int) (*Application, error)
	ListByUser(ctx context.Context, username string) ([]Application, error)
	UpdateStatus(ctx context.Context, rowNum int, status string) error
}

type repository struct {
	store     sheet.Store
	sheetName string

	allocMu sync.Mutex
}

func NewRepository(store sheet.Store, sheetName string) Repository {
	return &repository{store: store, sheetName: sheetName}
}

// Append fills in the application's ID and SheetRow.
func (r *repository) Append(ctx context.Context, app *Application) error {
	r.allocMu.Lock()
	defer r.allocMu.Unlock()

	rows, err := r.store.Rows(ctx, r.sheetName)
	if err != nil {
		return err
	}
	maxID := 0
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		if a := parseApplication(i+1, cells); a.ID > maxID {
			maxID = a.ID
		}
	}
	app.ID = maxID + 1

	rowNum, err := r.store.AppendRow(ctx, r.sheetName, app.encode())
	if err != nil {
		return err
	}
	app.SheetRow = rowNum
	return nil
}

func (r *repository) FindByRow(ctx context.Context, rowNum int) (*Application, error) {
	rows, err := r.store.Rows(ctx, r.sheetName)
	if err != nil {
		return nil, err
	}
	if rowNum < 2 || rowNum > len(rows) {
		return nil, sheet.ErrRowOutOfRange
	}
	app := parseApplication(rowNum, rows[rowNum-1])
	return &app, nil
}

func (r *repository) ListByUser(ctx context.Context, username string) ([]Application, error) {
	rows, err := r.store.Rows(ctx, r.sheetName)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(username))
	var apps []Application
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		app := parseApplication(i+1, cells)
		if strings.ToLower(strings.TrimSpace(app.Username)) == key {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (r *repository) UpdateStatus(ctx context.Context, rowNum int, status string) error {
	return r.store.UpdateCells(ctx, r.sheetName, rowNum, map[int]string{
		AppColStatus: status,
	})
}
