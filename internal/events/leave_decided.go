package events

import "time"

const LeaveDecidedTopic = "leave.request.decided.v1"

// LeaveDecidedEvent is published when a pending request reaches a terminal
// decision (approved or rejected). Downstream consumers (notification
// pipelines, data warehouse) are outside this system.
type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	DaysCount  string    `json:"days_count"`
	DecidedBy  string    `json:"decided_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventTypeLeaveApproved = "leave.approved"
	EventTypeLeaveRejected = "leave.rejected"
)
