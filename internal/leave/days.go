package leave

import (
	"time"

	leaveerrors "go-leavetrack/internal/leave/errors"

	"github.com/shopspring/decimal"
)

var halfDay = decimal.NewFromFloat(0.5)

// DayCount computes the chargeable day count for an inclusive calendar date
// range. A half-day request is always 0.5 days regardless of the range; the
// range must still be valid. Same-day requests count as 1 day.
//
// Dates are expected at midnight with no time component; the caller parses
// them that way.
func DayCount(start, end time.Time, isHalfDay bool) (decimal.Decimal, error) {
	days := int(end.Sub(start).Hours()/24) + 1
	if days <= 0 {
		return decimal.Zero, leaveerrors.ErrInvalidDateRange
	}
	if isHalfDay {
		return halfDay, nil
	}
	return decimal.NewFromInt(int64(days)), nil
}
