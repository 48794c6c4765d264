package leave

type CreateLeaveRequest struct {
	LeaveType     string `json:"leave_type" binding:"required,oneof=casual sick earned study work_from_home loss_of_pay"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	IsHalfDay     bool   `json:"is_half_day"`
	HalfDayPeriod string `json:"half_day_period" binding:"omitempty,oneof=morning afternoon"`
}

type EditLeaveRequest struct {
	LeaveType     string `json:"leave_type" binding:"required,oneof=casual sick earned study work_from_home loss_of_pay"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	IsHalfDay     bool   `json:"is_half_day"`
	HalfDayPeriod string `json:"half_day_period" binding:"omitempty,oneof=morning afternoon"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	IsHalfDay       bool    `json:"is_half_day"`
	HalfDayPeriod   *string `json:"half_day_period,omitempty"`
	Reason          string  `json:"reason"`
	DaysCount       string  `json:"days_count"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
