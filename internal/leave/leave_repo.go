package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusPatch carries the columns written alongside a status transition.
// OwnerID, when set, additionally scopes the conditional update to requests
// owned by that employee (the cancel path).
type StatusPatch struct {
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason *string
	OwnerID         *uuid.UUID
}

type ListFilter struct {
	EmployeeID string
	Status     string
	LeaveType  string
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Leave, error)
	// TransitionStatus is the CAS primitive: it updates the row only while
	// its status still equals from, and reports how many rows matched. Zero
	// means the guard lost; the caller decides what that maps to.
	TransitionStatus(ctx context.Context, id string, from, to Status, patch StatusPatch) (int64, error)
	// UpdatePending overwrites the mutable fields of a request guarded by
	// status = pending. Returns rows affected.
	UpdatePending(ctx context.Context, l *Leave) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	if r.tx != nil {
		var period any
		if l.HalfDayPeriod != nil {
			period = *l.HalfDayPeriod
		}
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO leave_requests (
				id, employee_id, leave_type, start_date, end_date,
				is_half_day, half_day_period, reason, days_count, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		`, l.ID, l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate,
			l.IsHalfDay, period, l.Reason, l.DaysCount, l.Status)
		return err
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	if r.tx != nil {
		return r.findByIDTx(ctx, id)
	}
	var l Leave
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) findByIDTx(ctx context.Context, id string) (*Leave, error) {
	row := r.tx.QueryRowContext(ctx, `
		SELECT id, employee_id, leave_type, start_date, end_date,
		       is_half_day, half_day_period, reason, days_count, status,
		       rejection_reason, approved_by, approved_at, created_at, updated_at
		FROM leave_requests
		WHERE id = $1
	`, id)

	var l Leave
	if err := row.Scan(
		&l.ID, &l.EmployeeID, &l.LeaveType, &l.StartDate, &l.EndDate,
		&l.IsHalfDay, &l.HalfDayPeriod, &l.Reason, &l.DaysCount, &l.Status,
		&l.RejectionReason, &l.ApprovedBy, &l.ApprovedAt, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Leave, error) {
	db := r.db.WithContext(ctx).Model(&Leave{})
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.LeaveType != "" {
		db = db.Where("leave_type = ?", filter.LeaveType)
	}

	var leaves []Leave
	err := db.Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) TransitionStatus(ctx context.Context, id string, from, to Status, patch StatusPatch) (int64, error) {
	query := `
		UPDATE leave_requests
		SET status = $1,
		    approved_by = $2,
		    approved_at = $3,
		    rejection_reason = $4,
		    updated_at = NOW()
		WHERE id = $5 AND status = $6
	`
	args := []any{to, patch.ApprovedBy, patch.ApprovedAt, patch.RejectionReason, id, from}
	if patch.OwnerID != nil {
		query += ` AND employee_id = $7`
		args = append(args, *patch.OwnerID)
	}

	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	res := r.db.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

func (r *repository) UpdatePending(ctx context.Context, l *Leave) (int64, error) {
	query := `
		UPDATE leave_requests
		SET leave_type = $1,
		    start_date = $2,
		    end_date = $3,
		    is_half_day = $4,
		    half_day_period = $5,
		    reason = $6,
		    days_count = $7,
		    updated_at = NOW()
		WHERE id = $8 AND status = $9
	`
	var period any
	if l.HalfDayPeriod != nil {
		period = *l.HalfDayPeriod
	}
	args := []any{l.LeaveType, l.StartDate, l.EndDate, l.IsHalfDay, period, l.Reason, l.DaysCount, l.ID, StatusPending}

	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	res := r.db.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}
