package leave

import (
	"strconv"
	"time"
)

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

const dateLayout = "2006-01-02"

// Leave Application sheet column map. Like the ledger layout, the ordinals
// are the wire format of the persisted sheet.
const (
	AppColID        = 0
	AppColUsername  = 1
	AppColLeaveType = 2
	AppColStartDate = 3
	AppColEndDate   = 4
	AppColDays      = 5
	AppColReason    = 6
	AppColStatus    = 7

	AppColumnCount = 8
)

// Application is one leave request. Rows are append-only: decisions and
// cancellations mutate the status cell in place, never remove the row.
type Application struct {
	ID        int
	Username  string
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Days      int
	Reason    string
	Status    string

	SheetRow int
}

func parseApplication(sheetRow int, cells []string) Application {
	get := func(col int) string {
		if col < len(cells) {
			return cells[col]
		}
		return ""
	}
	id, _ := strconv.Atoi(get(AppColID))
	days, _ := strconv.Atoi(get(AppColDays))
	start, _ := time.Parse(dateLayout, get(AppColStartDate))
	end, _ := time.Parse(dateLayout, get(AppColEndDate))
	return Application{
		ID:        id,
		Username:  get(AppColUsername),
		LeaveType: get(AppColLeaveType),
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Reason:    get(AppColReason),
		Status:    get(AppColStatus),
		SheetRow:  sheetRow,
	}
}

func (a *Application) encode() []string {
	row := make([]string, AppColumnCount)
	row[AppColID] = strconv.Itoa(a.ID)
	row[AppColUsername] = a.Username
	row[AppColLeaveType] = a.LeaveType
	row[AppColStartDate] = a.StartDate.Format(dateLayout)
	row[AppColEndDate] = a.EndDate.Format(dateLayout)
	row[AppColDays] = strconv.Itoa(a.Days)
	row[AppColReason] = a.Reason
	row[AppColStatus] = a.Status
	return row
}
