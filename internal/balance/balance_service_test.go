package balance

import (
	"context"
	"database/sql"
	"testing"

	"go-leavetrack/internal/authz"
	balanceerrors "go-leavetrack/internal/balance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*Balance, error)
	findByYearFn func(ctx context.Context, employeeID string, year int) ([]Balance, error)
	overwriteFn  func(ctx context.Context, id string, allocated, used decimal.Decimal) (int64, error)
	deleteYearFn func(ctx context.Context, employeeID string, year int) error
	seedYearFn   func(ctx context.Context, employeeID string, year int, defaults map[string]decimal.Decimal) error
}

func (f *fakeRepo) WithTx(*sql.Tx) Repository { return f }
func (f *fakeRepo) IncrementUsed(context.Context, string, int, string, decimal.Decimal) error {
	return nil
}
func (f *fakeRepo) GetForUpdate(context.Context, string, int, string) (*Balance, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Balance, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Balance, error) {
	return f.findByYearFn(ctx, employeeID, year)
}
func (f *fakeRepo) Overwrite(ctx context.Context, id string, allocated, used decimal.Decimal) (int64, error) {
	return f.overwriteFn(ctx, id, allocated, used)
}
func (f *fakeRepo) DeleteYear(ctx context.Context, employeeID string, year int) error {
	return f.deleteYearFn(ctx, employeeID, year)
}
func (f *fakeRepo) SeedYear(ctx context.Context, employeeID string, year int, defaults map[string]decimal.Decimal) error {
	return f.seedYearFn(ctx, employeeID, year, defaults)
}

var (
	employeeID = uuid.New()
	approverID = uuid.New()

	employeeActor = authz.Actor{ID: employeeID.String(), Role: authz.RoleEmployee}
	approverActor = authz.Actor{ID: approverID.String(), Role: authz.RoleApprover}
)

func ledgerRow(leaveType, allocated, used string) Balance {
	return Balance{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Year:       2024,
		LeaveType:  leaveType,
		Allocated:  decimal.RequireFromString(allocated),
		Used:       decimal.RequireFromString(used),
	}
}

func newTestService(t *testing.T, repo Repository) (Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authzService, err := authz.NewService()
	assert.NoError(t, err)

	return NewService(db, repo, authzService), mock
}

func TestGetForEmployee(t *testing.T) {
	t.Run("success own balances", func(t *testing.T) {
		repo := &fakeRepo{
			findByYearFn: func(_ context.Context, empID string, year int) ([]Balance, error) {
				assert.Equal(t, employeeID.String(), empID)
				assert.Equal(t, 2024, year)
				return []Balance{ledgerRow("casual", "12", "4.5")}, nil
			},
		}
		svc, _ := newTestService(t, repo)

		resp, err := svc.GetForEmployee(context.Background(), employeeActor, employeeID.String(), 2024)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "12", resp[0].Allocated)
		assert.Equal(t, "4.5", resp[0].Used)
		assert.Equal(t, "7.5", resp[0].Remaining)
	})

	t.Run("success remaining can go negative", func(t *testing.T) {
		repo := &fakeRepo{
			findByYearFn: func(context.Context, string, int) ([]Balance, error) {
				return []Balance{ledgerRow("casual", "12", "14")}, nil
			},
		}
		svc, _ := newTestService(t, repo)

		resp, err := svc.GetForEmployee(context.Background(), employeeActor, employeeID.String(), 2024)
		assert.NoError(t, err)
		assert.Equal(t, "-2", resp[0].Remaining)
	})

	t.Run("success approver reads someone else", func(t *testing.T) {
		repo := &fakeRepo{
			findByYearFn: func(context.Context, string, int) ([]Balance, error) {
				return []Balance{ledgerRow("sick", "10", "0")}, nil
			},
		}
		svc, _ := newTestService(t, repo)

		resp, err := svc.GetForEmployee(context.Background(), approverActor, employeeID.String(), 2024)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
	})

	t.Run("negative employee reads someone else", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{})

		_, err := svc.GetForEmployee(context.Background(), employeeActor, uuid.NewString(), 2024)
		assert.ErrorIs(t, err, balanceerrors.ErrApproverRequired)
	})

	t.Run("negative invalid employee id", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{})

		_, err := svc.GetForEmployee(context.Background(), employeeActor, "not-a-uuid", 2024)
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidEmployeeID)
	})
}

func TestSetBalance(t *testing.T) {
	t.Run("success used may exceed allocated", func(t *testing.T) {
		row := ledgerRow("casual", "10", "14")
		repo := &fakeRepo{
			overwriteFn: func(_ context.Context, id string, allocated, used decimal.Decimal) (int64, error) {
				assert.Equal(t, row.ID.String(), id)
				assert.True(t, allocated.Equal(decimal.RequireFromString("10")))
				assert.True(t, used.Equal(decimal.RequireFromString("14")))
				return 1, nil
			},
			findByIDFn: func(context.Context, string) (*Balance, error) { return &row, nil },
		}
		svc, _ := newTestService(t, repo)

		resp, err := svc.SetBalance(context.Background(), approverActor, row.ID.String(), SetBalanceRequest{
			Allocated: 10,
			Used:      14,
		})
		assert.NoError(t, err)
		assert.Equal(t, "-4", resp.Remaining)
	})

	t.Run("negative employee role denied", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{})

		_, err := svc.SetBalance(context.Background(), employeeActor, uuid.NewString(), SetBalanceRequest{Allocated: 10})
		assert.ErrorIs(t, err, balanceerrors.ErrApproverRequired)
	})

	t.Run("negative values rejected", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{})

		_, err := svc.SetBalance(context.Background(), approverActor, uuid.NewString(), SetBalanceRequest{
			Allocated: -1,
		})
		assert.ErrorIs(t, err, balanceerrors.ErrNegativeValue)
	})

	t.Run("negative unknown balance id", func(t *testing.T) {
		repo := &fakeRepo{
			overwriteFn: func(context.Context, string, decimal.Decimal, decimal.Decimal) (int64, error) {
				return 0, nil
			},
		}
		svc, _ := newTestService(t, repo)

		_, err := svc.SetBalance(context.Background(), approverActor, uuid.NewString(), SetBalanceRequest{Allocated: 10})
		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
	})
}

func TestResetYear(t *testing.T) {
	t.Run("success deletes then reseeds defaults", func(t *testing.T) {
		deleted := false
		var seeded map[string]decimal.Decimal
		repo := &fakeRepo{
			deleteYearFn: func(_ context.Context, empID string, year int) error {
				assert.Equal(t, employeeID.String(), empID)
				assert.Equal(t, 2025, year)
				deleted = true
				return nil
			},
			seedYearFn: func(_ context.Context, _ string, _ int, defaults map[string]decimal.Decimal) error {
				assert.True(t, deleted, "seed must run after delete")
				seeded = defaults
				return nil
			},
			findByYearFn: func(context.Context, string, int) ([]Balance, error) {
				return []Balance{ledgerRow("casual", "12", "0")}, nil
			},
		}
		svc, mock := newTestService(t, repo)
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.ResetYear(context.Background(), approverActor, employeeID.String(), 2025)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.True(t, seeded["casual"].Equal(decimal.RequireFromString("12")))
		assert.True(t, seeded["loss_of_pay"].Equal(decimal.Zero))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative employee role denied", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{})

		_, err := svc.ResetYear(context.Background(), employeeActor, employeeID.String(), 2025)
		assert.ErrorIs(t, err, balanceerrors.ErrApproverRequired)
	})

	t.Run("negative year out of range", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{})

		_, err := svc.ResetYear(context.Background(), approverActor, employeeID.String(), 1999)
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidYear)
	})
}

func TestDefaultAllocations(t *testing.T) {
	t.Run("success built-in defaults", func(t *testing.T) {
		defaults := DefaultAllocations()
		assert.True(t, defaults["casual"].Equal(decimal.RequireFromString("12")))
		assert.True(t, defaults["sick"].Equal(decimal.RequireFromString("10")))
		assert.True(t, defaults["earned"].Equal(decimal.RequireFromString("15")))
		assert.True(t, defaults["loss_of_pay"].Equal(decimal.Zero))
	})

	t.Run("success env override", func(t *testing.T) {
		t.Setenv("LEAVE_DEFAULT_ALLOCATIONS", "casual=6,sick=7.5")

		defaults := DefaultAllocations()
		assert.True(t, defaults["casual"].Equal(decimal.RequireFromString("6")))
		assert.True(t, defaults["sick"].Equal(decimal.RequireFromString("7.5")))
	})
}
