package balance

type SetBalanceRequest struct {
	Allocated float64 `json:"allocated" binding:"min=0"`
	Used      float64 `json:"used" binding:"min=0"`
}

type ResetYearRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Year       int    `json:"year" binding:"required"`
}

type BalanceResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	LeaveType  string `json:"leave_type"`
	Allocated  string `json:"allocated"`
	Used       string `json:"used"`
	Remaining  string `json:"remaining"`
}
