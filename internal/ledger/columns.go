package ledger

// The Leave Data sheet addresses fields by ordinal position, so this column
// map is part of the external wire format. Business logic must go through the
// named constants here, never raw offsets. Bump SchemaVersion whenever the
// layout changes.
const SchemaVersion = 1

const (
	ColUsername           = 0
	ColPassword           = 1
	ColEmail              = 2
	ColManager            = 3
	ColCarryForward       = 4
	ColAnnualLeave        = 5
	ColCompassionateLeave = 6
	ColTotalLeave         = 7

	// Columns 8..31 hold twelve (leave, mc) pairs, January first.
	colMonthBase = 8

	ColLeaveTaken   = 32
	ColLeaveBalance = 33
	ColMCTaken      = 34
	ColMCBalance    = 35

	ColumnCount = 36
)

// MonthLeaveCol returns the leave-days column for a 1-based month.
func MonthLeaveCol(month int) int {
	return colMonthBase + 2*(month-1)
}

// MonthMCCol returns the mc-days column for a 1-based month.
func MonthMCCol(month int) int {
	return colMonthBase + 2*(month-1) + 1
}
