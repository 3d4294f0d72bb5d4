package ledger

import (
	"strconv"
	"time"
)

// Kind distinguishes the two counters a day count can be booked against.
type Kind int

const (
	KindLeave Kind = iota
	KindMC
)

// KindFor maps a leave type to its counter. Only "MC" books against the
// medical-certificate counters; every other type, free-text included, books
// against annual leave.
func KindFor(leaveType string) Kind {
	if leaveType == "MC" {
		return KindMC
	}
	return KindLeave
}

// MonthUsage is one month's (leave, mc) counter pair.
type MonthUsage struct {
	Leave int
	MC    int
}

// Row is one employee's ledger record. The running totals are persisted
// state, not derived on read: every state transition that books or releases
// days must keep them in sync, maintaining
// LeaveBalance = TotalLeave - LeaveTaken.
type Row struct {
	SheetRow int

	Username string
	Password string
	Email    string
	Manager  string

	CarryForward       int
	AnnualLeave        int
	CompassionateLeave int
	TotalLeave         int

	Months [12]MonthUsage

	LeaveTaken   int
	LeaveBalance int
	MCTaken      int
	MCBalance    int
}

// Usage returns the counter pair for the given month.
func (r *Row) Usage(month time.Month) MonthUsage {
	return r.Months[int(month)-1]
}

func cell(cells []string, col int) string {
	if col < len(cells) {
		return cells[col]
	}
	return ""
}

func intCell(cells []string, col int) int {
	n, _ := strconv.Atoi(cell(cells, col))
	return n
}

// parseRow decodes one sheet row. Missing trailing cells read as zero values;
// the store trims trailing empties.
func parseRow(sheetRow int, cells []string) Row {
	r := Row{
		SheetRow:           sheetRow,
		Username:           cell(cells, ColUsername),
		Password:           cell(cells, ColPassword),
		Email:              cell(cells, ColEmail),
		Manager:            cell(cells, ColManager),
		CarryForward:       intCell(cells, ColCarryForward),
		AnnualLeave:        intCell(cells, ColAnnualLeave),
		CompassionateLeave: intCell(cells, ColCompassionateLeave),
		TotalLeave:         intCell(cells, ColTotalLeave),
		LeaveTaken:         intCell(cells, ColLeaveTaken),
		LeaveBalance:       intCell(cells, ColLeaveBalance),
		MCTaken:            intCell(cells, ColMCTaken),
		MCBalance:          intCell(cells, ColMCBalance),
	}
	for m := 1; m <= 12; m++ {
		r.Months[m-1] = MonthUsage{
			Leave: intCell(cells, MonthLeaveCol(m)),
			MC:    intCell(cells, MonthMCCol(m)),
		}
	}
	return r
}
