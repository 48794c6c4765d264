package balance

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// IncrementUsed adds days to used for (employee, year, type) as one
	// atomic statement, creating the row with allocated = 0 if it does not
	// exist yet. Safe under concurrent approvals for the same ledger row.
	IncrementUsed(ctx context.Context, employeeID string, year int, leaveType string, days decimal.Decimal) error
	// GetForUpdate reads the row with a row lock so an overdraft check and
	// the following increment see a stable value inside the transaction.
	GetForUpdate(ctx context.Context, employeeID string, year int, leaveType string) (*Balance, error)
	FindByID(ctx context.Context, id string) (*Balance, error)
	FindByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Balance, error)
	Overwrite(ctx context.Context, id string, allocated, used decimal.Decimal) (int64, error)
	DeleteYear(ctx context.Context, employeeID string, year int) error
	SeedYear(ctx context.Context, employeeID string, year int, defaults map[string]decimal.Decimal) error
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

const incrementUsedQuery = `
	INSERT INTO leave_balances (id, employee_id, year, leave_type, allocated, used, created_at, updated_at)
	VALUES (gen_random_uuid(), $1, $2, $3, 0, $4, NOW(), NOW())
	ON CONFLICT (employee_id, year, leave_type) DO UPDATE
	SET used = leave_balances.used + EXCLUDED.used, updated_at = NOW()
`

func (r *repository) IncrementUsed(ctx context.Context, employeeID string, year int, leaveType string, days decimal.Decimal) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, incrementUsedQuery, employeeID, year, leaveType, days)
		return err
	}
	return r.db.WithContext(ctx).Exec(incrementUsedQuery, employeeID, year, leaveType, days).Error
}

const getForUpdateQuery = `
	SELECT id, employee_id, year, leave_type, allocated, used, created_at, updated_at
	FROM leave_balances
	WHERE employee_id = $1 AND year = $2 AND leave_type = $3
	FOR UPDATE
`

func (r *repository) GetForUpdate(ctx context.Context, employeeID string, year int, leaveType string) (*Balance, error) {
	var row *sql.Row
	if r.tx != nil {
		row = r.tx.QueryRowContext(ctx, getForUpdateQuery, employeeID, year, leaveType)
	} else {
		sqlDB, err := r.db.DB()
		if err != nil {
			return nil, err
		}
		row = sqlDB.QueryRowContext(ctx, getForUpdateQuery, employeeID, year, leaveType)
	}

	var b Balance
	if err := row.Scan(
		&b.ID, &b.EmployeeID, &b.Year, &b.LeaveType,
		&b.Allocated, &b.Used, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Balance, error) {
	var balances []Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("year = ?", year).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) Overwrite(ctx context.Context, id string, allocated, used decimal.Decimal) (int64, error) {
	query := `
		UPDATE leave_balances
		SET allocated = $1, used = $2, updated_at = NOW()
		WHERE id = $3
	`
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, query, allocated, used, id)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	res := r.db.WithContext(ctx).Exec(query, allocated, used, id)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteYear(ctx context.Context, employeeID string, year int) error {
	query := `DELETE FROM leave_balances WHERE employee_id = $1 AND year = $2`
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, query, employeeID, year)
		return err
	}
	return r.db.WithContext(ctx).Exec(query, employeeID, year).Error
}

const seedRowQuery = `
	INSERT INTO leave_balances (id, employee_id, year, leave_type, allocated, used, created_at, updated_at)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, 0, NOW(), NOW())
`

func (r *repository) SeedYear(ctx context.Context, employeeID string, year int, defaults map[string]decimal.Decimal) error {
	for leaveType, allocated := range defaults {
		if r.tx != nil {
			if _, err := r.tx.ExecContext(ctx, seedRowQuery, employeeID, year, leaveType, allocated); err != nil {
				return err
			}
			continue
		}
		if err := r.db.WithContext(ctx).Exec(seedRowQuery, employeeID, year, leaveType, allocated).Error; err != nil {
			return err
		}
	}
	return nil
}
