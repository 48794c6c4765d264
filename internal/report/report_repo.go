package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApprovedAggregate is the per-type rollup of approved requests for one
// employee and year, keyed by the year the leave starts in.
type ApprovedAggregate struct {
	LeaveType string
	Requests  int
	Days      decimal.Decimal
}

// Absence is an approved request window used by the on-leave and calendar
// views, carrying the directory name alongside the request fields.
type Absence struct {
	EmployeeID    string
	FullName      string
	LeaveType     string
	StartDate     time.Time
	EndDate       time.Time
	IsHalfDay     bool
	HalfDayPeriod *string
}

//go:generate mockgen -source=report_repo.go -destination=mock/report_repo_mock.go -package=mock
type Repository interface {
	ApprovedByType(ctx context.Context, employeeID string, year int) ([]ApprovedAggregate, error)
	AbsencesOn(ctx context.Context, day time.Time) ([]Absence, error)
	AbsencesOverlapping(ctx context.Context, from, to time.Time) ([]Absence, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ApprovedByType(ctx context.Context, employeeID string, year int) ([]ApprovedAggregate, error) {
	var aggregates []ApprovedAggregate
	err := r.db.WithContext(ctx).Raw(`
		SELECT leave_type, COUNT(*) AS requests, COALESCE(SUM(days_count), 0) AS days
		FROM leave_requests
		WHERE employee_id = ?
		  AND status = 'approved'
		  AND EXTRACT(YEAR FROM start_date) = ?
		GROUP BY leave_type
		ORDER BY leave_type
	`, employeeID, year).Scan(&aggregates).Error
	return aggregates, err
}

const absenceSelect = `
	SELECT lr.employee_id::text AS employee_id,
	       COALESCE(e.full_name, '') AS full_name,
	       lr.leave_type,
	       lr.start_date,
	       lr.end_date,
	       lr.is_half_day,
	       lr.half_day_period
	FROM leave_requests lr
	LEFT JOIN employees e ON e.id = lr.employee_id
`

func (r *repository) AbsencesOn(ctx context.Context, day time.Time) ([]Absence, error) {
	var absences []Absence
	err := r.db.WithContext(ctx).Raw(absenceSelect+`
		WHERE lr.status = 'approved'
		  AND lr.start_date <= ? AND lr.end_date >= ?
		ORDER BY e.full_name
	`, day, day).Scan(&absences).Error
	return absences, err
}

func (r *repository) AbsencesOverlapping(ctx context.Context, from, to time.Time) ([]Absence, error) {
	var absences []Absence
	err := r.db.WithContext(ctx).Raw(absenceSelect+`
		WHERE lr.status = 'approved'
		  AND lr.start_date <= ? AND lr.end_date >= ?
		ORDER BY lr.start_date
	`, to, from).Scan(&absences).Error
	return absences, err
}
