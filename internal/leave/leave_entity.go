package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the closed set of request states. pending is the only initial
// and only non-terminal state; the other three are never left again.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected, StatusCancelled},
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// CanTransition consults the explicit transition table. Terminal states have
// no outgoing edges, so illegal transitions cannot be expressed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

const (
	TypeCasual       = "casual"
	TypeSick         = "sick"
	TypeEarned       = "earned"
	TypeStudy        = "study"
	TypeWorkFromHome = "work_from_home"
	TypeLossOfPay    = "loss_of_pay"
)

// KnownTypes is the set the HTTP layer validates against. The core only
// requires a non-empty type so new kinds of leave can be added without a
// schema change.
var KnownTypes = []string{
	TypeCasual, TypeSick, TypeEarned, TypeStudy, TypeWorkFromHome, TypeLossOfPay,
}

const (
	HalfDayMorning   = "morning"
	HalfDayAfternoon = "afternoon"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`

	LeaveType string    `gorm:"type:varchar(30);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`

	IsHalfDay     bool            `gorm:"not null;default:false"`
	HalfDayPeriod *string         `gorm:"type:varchar(10)"`
	Reason        string          `gorm:"type:text;not null"`
	DaysCount     decimal.Decimal `gorm:"type:numeric(5,1);not null"`

	Status          Status     `gorm:"type:varchar(20);not null;default:'pending';index"`
	RejectionReason *string    `gorm:"type:text"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Leave) TableName() string { return "leave_requests" }
