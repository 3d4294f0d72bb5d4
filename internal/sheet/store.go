package sheet

import (
	"context"
	"errors"
)

// ErrSheetNotFound is returned when the named sheet does not exist in the
// backing workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrRowOutOfRange is returned when a row number does not address an existing
// data row.
var ErrRowOutOfRange = errors.New("row out of range")

// Store is the tabular-store collaborator all persistent state lives in.
// Rows are addressed by their 1-based sheet row number, header included
// (row 1 is the header row), because those numbers travel in emailed
// decision links and are part of the external contract.
//
// The store guarantees request-level atomicity only: each call is atomic,
// sequences of calls are not.
type Store interface {
	Rows(ctx context.Context, sheetName string) ([][]string, error)
	AppendRow(ctx context.Context, sheetName string, values []string) (rowNum int, err error)
	UpdateCells(ctx context.Context, sheetName string, rowNum int, cells map[int]string) error
}
