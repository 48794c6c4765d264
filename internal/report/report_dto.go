package report

// TypeSummary is one row of the per-type yearly summary: the ledger numbers
// next to what the lifecycle engine actually approved.
type TypeSummary struct {
	LeaveType        string `json:"leave_type"`
	Allocated        string `json:"allocated"`
	Used             string `json:"used"`
	Remaining        string `json:"remaining"`
	ApprovedRequests int    `json:"approved_requests"`
	ApprovedDays     string `json:"approved_days"`
}

type YearSummaryResponse struct {
	EmployeeID string        `json:"employee_id"`
	Year       int           `json:"year"`
	Types      []TypeSummary `json:"types"`
}

// OnLeaveEntry is one employee absent on the requested day.
type OnLeaveEntry struct {
	EmployeeID    string  `json:"employee_id"`
	FullName      string  `json:"full_name"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	IsHalfDay     bool    `json:"is_half_day"`
	HalfDayPeriod *string `json:"half_day_period,omitempty"`
}

// CalendarDay is one day of the month occupancy view. Days with zero
// approved absences are included so the consumer renders a full month.
type CalendarDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type MonthCalendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}
