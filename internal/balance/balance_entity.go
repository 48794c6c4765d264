package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is the allocated-vs-used day ledger for one employee, year and
// leave type. Rows are seeded externally (or by ResetYear); used only grows
// through approvals and is otherwise touched by the approver override.
type Balance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balances_key"`
	Year       int       `gorm:"not null;uniqueIndex:idx_leave_balances_key"`
	LeaveType  string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_leave_balances_key"`

	Allocated decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`
	Used      decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Balance) TableName() string { return "leave_balances" }

// Remaining is derived for display; it is never stored.
func (b Balance) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Used)
}
