package leave

import (
	"os"
	"time"
)

type YearSource string

const (
	// YearFromStartDate charges the balance of the year the leave starts in.
	YearFromStartDate YearSource = "start_date"
	// YearFromApprovalDate charges the wall-clock year at approval time,
	// matching the legacy behavior. Ambiguous for leave spanning a year
	// boundary or approved long after submission.
	YearFromApprovalDate YearSource = "approval_date"
)

type OverdraftMode string

const (
	// OverdraftAllow lets used exceed allocated; the excess shows up as a
	// reporting anomaly. This is the legacy behavior.
	OverdraftAllow OverdraftMode = "allow"
	// OverdraftReject refuses approvals that would push used past allocated.
	OverdraftReject OverdraftMode = "reject"
)

// ApprovalPolicy captures the two product decisions the lifecycle engine
// refuses to hardcode: which year a decided request charges, and whether an
// approval may overdraw the balance.
type ApprovalPolicy struct {
	YearSource YearSource
	Overdraft  OverdraftMode
}

func DefaultPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		YearSource: YearFromStartDate,
		Overdraft:  OverdraftAllow,
	}
}

// PolicyFromEnv reads LEAVE_BALANCE_YEAR_SOURCE and LEAVE_OVERDRAFT_MODE,
// falling back to the defaults for unset or unknown values.
func PolicyFromEnv() ApprovalPolicy {
	p := DefaultPolicy()

	switch YearSource(os.Getenv("LEAVE_BALANCE_YEAR_SOURCE")) {
	case YearFromApprovalDate:
		p.YearSource = YearFromApprovalDate
	case YearFromStartDate:
		p.YearSource = YearFromStartDate
	}

	switch OverdraftMode(os.Getenv("LEAVE_OVERDRAFT_MODE")) {
	case OverdraftReject:
		p.Overdraft = OverdraftReject
	case OverdraftAllow:
		p.Overdraft = OverdraftAllow
	}

	return p
}

// BalanceYear resolves which year's balance an approval charges.
func (p ApprovalPolicy) BalanceYear(startDate, now time.Time) int {
	if p.YearSource == YearFromApprovalDate {
		return now.UTC().Year()
	}
	return startDate.Year()
}
