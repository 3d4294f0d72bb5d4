package leave

type ApplyLeaveRequest struct {
	LeaveType string `json:"leaveType" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason"`
	// Client-side day count, accepted but recomputed server-side.
	Days float64 `json:"days"`
}

type CancelLeaveRequest struct {
	ApplicationID int `json:"applicationId" binding:"required"`
	RowNumber     int `json:"rowNumber" binding:"required"`
}

type MonthBreakdown struct {
	Leave int `json:"leave"`
	MC    int `json:"mc"`
}

type ApplicationResponse struct {
	ID        int    `json:"id"`
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
	Reason    string `json:"reason,omitempty"`
	Status    string `json:"status"`
	RowNumber int    `json:"rowNumber"`
}

type LeaveDataResponse struct {
	Username           string                    `json:"username"`
	CarryForward       int                       `json:"carryForward"`
	AnnualLeave        int                       `json:"annualLeave"`
	CompassionateLeave int                       `json:"compassionateLeave"`
	TotalLeave         int                       `json:"totalLeave"`
	MonthlyData        map[string]MonthBreakdown `json:"monthlyData"`
	LeaveTaken         int                       `json:"leaveTaken"`
	LeaveBalance       int                       `json:"leaveBalance"`
	MCTaken            int                       `json:"mcTaken"`
	MCBalance          int                       `json:"mcBalance"`
	Applications       []ApplicationResponse     `json:"applications"`
}
