package sheet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelStore persists every sheet in a single xlsx workbook on disk. A store
// mutex serializes calls, which is the only atomicity the backing format
// offers. Saves are retried a bounded number of times on I/O failure;
// validation-level problems (missing sheet, bad row) are never retried.
type ExcelStore struct {
	mu      sync.Mutex
	path    string
	retries int
	logger  *zap.Logger
}

func NewExcelStore(path string, retries int, logger ...*zap.Logger) *ExcelStore {
	l := zap.L().Named("sheet.excel")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("sheet.excel")
	}
	if retries < 0 {
		retries = 0
	}
	return &ExcelStore{path: path, retries: retries, logger: l}
}

func (s *ExcelStore) Rows(ctx context.Context, sheetName string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func (s *ExcelStore) AppendRow(ctx context.Context, sheetName string, values []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	rowNum := len(rows) + 1

	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return 0, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	if err := s.save(ctx, f); err != nil {
		return 0, err
	}
	return rowNum, nil
}

func (s *ExcelStore) UpdateCells(ctx context.Context, sheetName string, rowNum int, cells map[int]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	if rowNum < 2 || rowNum > len(rows) {
		return fmt.Errorf("%w: %s row %d", ErrRowOutOfRange, sheetName, rowNum)
	}

	for col, v := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	return s.save(ctx, f)
}

func (s *ExcelStore) save(ctx context.Context, f *excelize.File) error {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = f.Save(); lastErr == nil {
			return nil
		}
		s.logger.Warn("workbook save failed",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
	return fmt.Errorf("save workbook after %d attempts: %w", s.retries+1, lastErr)
}
