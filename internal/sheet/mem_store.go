package sheet

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store with the same row-numbering contract as the
// workbook-backed store. Used by tests and storeless development runs.
type MemStore struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

func NewMemStore() *MemStore {
	return &MemStore{sheets: make(map[string][][]string)}
}

// Seed replaces the named sheet's contents, header row included.
func (s *MemStore) Seed(sheetName string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.sheets[sheetName] = cp
}

func (s *MemStore) Rows(ctx context.Context, sheetName string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[sheetName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	return cp, nil
}

func (s *MemStore) AppendRow(ctx context.Context, sheetName string, values []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[sheetName]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	s.sheets[sheetName] = append(rows, append([]string(nil), values...))
	return len(rows) + 1, nil
}

func (s *MemStore) UpdateCells(ctx context.Context, sheetName string, rowNum int, cells map[int]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[sheetName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	if rowNum < 2 || rowNum > len(rows) {
		return fmt.Errorf("%w: %s row %d", ErrRowOutOfRange, sheetName, rowNum)
	}
	row := rows[rowNum-1]
	for col, v := range cells {
		for len(row) <= col {
			row = append(row, "")
		}
		row[col] = v
	}
	rows[rowNum-1] = row
	return nil
}
