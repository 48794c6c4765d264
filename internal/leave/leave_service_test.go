package leave

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-leavetrack/internal/audit"
	"go-leavetrack/internal/authz"
	"go-leavetrack/internal/balance"
	"go-leavetrack/internal/events"
	leaveerrors "go-leavetrack/internal/leave/errors"
	"go-leavetrack/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeaveRepo struct {
	createFn     func(ctx context.Context, l *Leave) error
	findByIDFn   func(ctx context.Context, id string) (*Leave, error)
	findAllFn    func(ctx context.Context, filter ListFilter) ([]Leave, error)
	transitionFn func(ctx context.Context, id string, from, to Status, patch StatusPatch) (int64, error)
	updateFn     func(ctx context.Context, l *Leave) (int64, error)
}

func (f *fakeLeaveRepo) WithTx(*sql.Tx) Repository { return f }
func (f *fakeLeaveRepo) Create(ctx context.Context, l *Leave) error {
	return f.createFn(ctx, l)
}
func (f *fakeLeaveRepo) FindByID(ctx context.Context, id string) (*Leave, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeLeaveRepo) FindAll(ctx context.Context, filter ListFilter) ([]Leave, error) {
	return f.findAllFn(ctx, filter)
}
func (f *fakeLeaveRepo) TransitionStatus(ctx context.Context, id string, from, to Status, patch StatusPatch) (int64, error) {
	return f.transitionFn(ctx, id, from, to, patch)
}
func (f *fakeLeaveRepo) UpdatePending(ctx context.Context, l *Leave) (int64, error) {
	return f.updateFn(ctx, l)
}

type fakeBalanceRepo struct {
	incrementFn    func(ctx context.Context, employeeID string, year int, leaveType string, days decimal.Decimal) error
	getForUpdateFn func(ctx context.Context, employeeID string, year int, leaveType string) (*balance.Balance, error)
}

func (f *fakeBalanceRepo) WithTx(*sql.Tx) balance.Repository { return f }
func (f *fakeBalanceRepo) IncrementUsed(ctx context.Context, employeeID string, year int, leaveType string, days decimal.Decimal) error {
	return f.incrementFn(ctx, employeeID, year, leaveType, days)
}
func (f *fakeBalanceRepo) GetForUpdate(ctx context.Context, employeeID string, year int, leaveType string) (*balance.Balance, error) {
	return f.getForUpdateFn(ctx, employeeID, year, leaveType)
}
func (f *fakeBalanceRepo) FindByID(context.Context, string) (*balance.Balance, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeBalanceRepo) FindByEmployeeYear(context.Context, string, int) ([]balance.Balance, error) {
	return nil, nil
}
func (f *fakeBalanceRepo) Overwrite(context.Context, string, decimal.Decimal, decimal.Decimal) (int64, error) {
	return 0, nil
}
func (f *fakeBalanceRepo) DeleteYear(context.Context, string, int) error { return nil }
func (f *fakeBalanceRepo) SeedYear(context.Context, string, int, map[string]decimal.Decimal) error {
	return nil
}

type fakeAuditRepo struct {
	recorded []audit.Action
}

func (f *fakeAuditRepo) WithTx(*sql.Tx) audit.Repository { return f }
func (f *fakeAuditRepo) Record(_ context.Context, a *audit.Action) error {
	f.recorded = append(f.recorded, *a)
	return nil
}
func (f *fakeAuditRepo) FindByLeave(context.Context, string) ([]audit.Action, error) {
	return f.recorded, nil
}

type fakeOutboxRepo struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(*sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepo) Create(_ context.Context, e kafka.OutboxEvent) error {
	f.created = append(f.created, e)
	return nil
}
func (f *fakeOutboxRepo) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) MarkSent(context.Context, string) error           { return nil }
func (f *fakeOutboxRepo) MarkFailed(context.Context, string, string) error { return nil }

var (
	employeeID = uuid.New()
	approverID = uuid.New()

	employeeActor = authz.Actor{ID: employeeID.String(), Role: authz.RoleEmployee}
	approverActor = authz.Actor{ID: approverID.String(), Role: authz.RoleApprover}
)

func pendingLeave(days string) *Leave {
	return &Leave{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		LeaveType:  TypeCasual,
		StartDate:  time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
		Reason:     "family function",
		DaysCount:  decimal.RequireFromString(days),
		Status:     StatusPending,
		CreatedAt:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

type serviceFixture struct {
	svc      *service
	mock     sqlmock.Sqlmock
	leaves   *fakeLeaveRepo
	balances *fakeBalanceRepo
	audits   *fakeAuditRepo
	outbox   *fakeOutboxRepo
}

func newServiceFixture(t *testing.T, policy ApprovalPolicy) *serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authzService, err := authz.NewService()
	assert.NoError(t, err)

	leaves := &fakeLeaveRepo{}
	balances := &fakeBalanceRepo{
		incrementFn: func(context.Context, string, int, string, decimal.Decimal) error { return nil },
	}
	audits := &fakeAuditRepo{}
	outbox := &fakeOutboxRepo{}

	svc := NewServiceWithOutbox(db, leaves, balances, audits, outbox, authzService, policy).(*service)
	svc.now = func() time.Time { return time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC) }

	return &serviceFixture{svc: svc, mock: mock, leaves: leaves, balances: balances, audits: audits, outbox: outbox}
}

func TestCreateLeave(t *testing.T) {
	validReq := CreateLeaveRequest{
		LeaveType: TypeCasual,
		StartDate: "2024-03-11",
		EndDate:   "2024-03-13",
		Reason:    "family function",
	}

	t.Run("success", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())

		var created *Leave
		f.leaves.createFn = func(_ context.Context, l *Leave) error {
			created = l
			return nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.svc.Create(context.Background(), employeeActor, validReq)
		assert.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "3", resp.DaysCount)
		assert.Equal(t, employeeID.String(), resp.EmployeeID)
		assert.NotNil(t, created)
		assert.Equal(t, StatusPending, created.Status)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("success half day", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		f.leaves.createFn = func(context.Context, *Leave) error { return nil }
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		req := validReq
		req.EndDate = req.StartDate
		req.IsHalfDay = true
		req.HalfDayPeriod = HalfDayMorning

		resp, err := f.svc.Create(context.Background(), employeeActor, req)
		assert.NoError(t, err)
		assert.Equal(t, "0.5", resp.DaysCount)
	})

	t.Run("negative reason too short", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		req := validReq
		req.Reason = "  ok  "

		_, err := f.svc.Create(context.Background(), employeeActor, req)
		assert.ErrorIs(t, err, leaveerrors.ErrReasonTooShort)
	})

	t.Run("negative invalid date format", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		req := validReq
		req.StartDate = "11-03-2024"

		_, err := f.svc.Create(context.Background(), employeeActor, req)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("negative end before start", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		req := validReq
		req.StartDate = "2024-03-13"
		req.EndDate = "2024-03-11"

		_, err := f.svc.Create(context.Background(), employeeActor, req)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("negative half day without period", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		req := validReq
		req.IsHalfDay = true

		_, err := f.svc.Create(context.Background(), employeeActor, req)
		assert.ErrorIs(t, err, leaveerrors.ErrHalfDayPeriodRequired)
	})
}

func TestApproveLeave(t *testing.T) {
	t.Run("success charges balance and records audit", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")

		f.leaves.transitionFn = func(_ context.Context, id string, from, to Status, patch StatusPatch) (int64, error) {
			assert.Equal(t, l.ID.String(), id)
			assert.Equal(t, StatusPending, from)
			assert.Equal(t, StatusApproved, to)
			assert.Equal(t, approverID, *patch.ApprovedBy)
			return 1, nil
		}
		approved := *l
		approved.Status = StatusApproved
		approved.ApprovedBy = &approverID
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return &approved, nil }

		var chargedYear int
		var chargedDays decimal.Decimal
		f.balances.incrementFn = func(_ context.Context, empID string, year int, leaveType string, days decimal.Decimal) error {
			assert.Equal(t, employeeID.String(), empID)
			assert.Equal(t, TypeCasual, leaveType)
			chargedYear = year
			chargedDays = days
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.svc.Approve(context.Background(), approverActor, l.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		// Default policy charges the year the leave starts in, not the
		// wall-clock year of the approval (fixture clock is 2024-12-30).
		assert.Equal(t, 2024, chargedYear)
		assert.True(t, chargedDays.Equal(decimal.RequireFromString("3")))

		assert.Len(t, f.audits.recorded, 1)
		assert.Equal(t, audit.ActionApprove, f.audits.recorded[0].Action)
		assert.Equal(t, approverID, f.audits.recorded[0].ActorID)

		assert.Len(t, f.outbox.created, 1)
		assert.Equal(t, events.EventTypeLeaveApproved, f.outbox.created[0].EventType)
		assert.Equal(t, events.LeaveDecidedTopic, f.outbox.created[0].Topic)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("success balance year follows start date across boundary", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.YearSource = YearFromStartDate
		f := newServiceFixture(t, policy)

		l := pendingLeave("2")
		l.StartDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		l.EndDate = time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 1, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		var chargedYear int
		f.balances.incrementFn = func(_ context.Context, _ string, year int, _ string, _ decimal.Decimal) error {
			chargedYear = year
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		_, err := f.svc.Approve(context.Background(), approverActor, l.ID.String())
		assert.NoError(t, err)
		// Approved on 2024-12-30, but the leave is in January 2025.
		assert.Equal(t, 2025, chargedYear)
	})

	t.Run("success balance year follows approval date when configured", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.YearSource = YearFromApprovalDate
		f := newServiceFixture(t, policy)

		l := pendingLeave("2")
		l.StartDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 1, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		var chargedYear int
		f.balances.incrementFn = func(_ context.Context, _ string, year int, _ string, _ decimal.Decimal) error {
			chargedYear = year
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		_, err := f.svc.Approve(context.Background(), approverActor, l.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, 2024, chargedYear)
	})

	t.Run("negative second approval loses the guard", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		l.Status = StatusApproved

		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 0, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		charges := 0
		f.balances.incrementFn = func(context.Context, string, int, string, decimal.Decimal) error {
			charges++
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Approve(context.Background(), approverActor, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
		assert.Zero(t, charges)
		assert.Empty(t, f.audits.recorded)
		assert.Empty(t, f.outbox.created)
	})

	t.Run("negative unknown id", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 0, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return nil, gorm.ErrRecordNotFound }

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Approve(context.Background(), approverActor, uuid.NewString())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative employee role denied", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())

		_, err := f.svc.Approve(context.Background(), employeeActor, uuid.NewString())
		assert.ErrorIs(t, err, leaveerrors.ErrApproverRequired)
	})

	t.Run("negative overdraft rejected when mode is reject", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.Overdraft = OverdraftReject
		f := newServiceFixture(t, policy)

		l := pendingLeave("3")
		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 1, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }
		f.balances.getForUpdateFn = func(context.Context, string, int, string) (*balance.Balance, error) {
			return &balance.Balance{
				Allocated: decimal.RequireFromString("12"),
				Used:      decimal.RequireFromString("10"),
			}, nil
		}
		charges := 0
		f.balances.incrementFn = func(context.Context, string, int, string, decimal.Decimal) error {
			charges++
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Approve(context.Background(), approverActor, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.Zero(t, charges)
	})

	t.Run("negative missing ledger row when mode is reject", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.Overdraft = OverdraftReject
		f := newServiceFixture(t, policy)

		l := pendingLeave("1")
		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 1, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }
		f.balances.getForUpdateFn = func(context.Context, string, int, string) (*balance.Balance, error) {
			return nil, gorm.ErrRecordNotFound
		}

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Approve(context.Background(), approverActor, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
	})

	t.Run("success overdraft allowed in legacy mode", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())

		l := pendingLeave("30")
		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 1, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		charges := 0
		f.balances.incrementFn = func(context.Context, string, int, string, decimal.Decimal) error {
			charges++
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		// No overdraft check runs at all; used may exceed allocated.
		_, err := f.svc.Approve(context.Background(), approverActor, l.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, 1, charges)
	})
}

func TestRejectLeave(t *testing.T) {
	t.Run("success never touches balances", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")

		f.leaves.transitionFn = func(_ context.Context, _ string, from, to Status, patch StatusPatch) (int64, error) {
			assert.Equal(t, StatusPending, from)
			assert.Equal(t, StatusRejected, to)
			assert.Equal(t, "dates clash with release", *patch.RejectionReason)
			return 1, nil
		}
		rejected := *l
		rejected.Status = StatusRejected
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return &rejected, nil }

		charges := 0
		f.balances.incrementFn = func(context.Context, string, int, string, decimal.Decimal) error {
			charges++
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.svc.Reject(context.Background(), approverActor, l.ID.String(), "dates clash with release")
		assert.NoError(t, err)
		assert.Equal(t, "rejected", resp.Status)
		assert.Zero(t, charges)
		assert.Len(t, f.audits.recorded, 1)
		assert.Equal(t, audit.ActionReject, f.audits.recorded[0].Action)
		assert.Len(t, f.outbox.created, 1)
		assert.Equal(t, events.EventTypeLeaveRejected, f.outbox.created[0].EventType)
	})

	t.Run("success reason is optional", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")

		f.leaves.transitionFn = func(_ context.Context, _ string, _, _ Status, patch StatusPatch) (int64, error) {
			assert.Nil(t, patch.RejectionReason)
			return 1, nil
		}
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		_, err := f.svc.Reject(context.Background(), approverActor, l.ID.String(), "   ")
		assert.NoError(t, err)
	})

	t.Run("negative already processed", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		l.Status = StatusCancelled

		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 0, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Reject(context.Background(), approverActor, l.ID.String(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
	})

	t.Run("negative employee role denied", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())

		_, err := f.svc.Reject(context.Background(), employeeActor, uuid.NewString(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrApproverRequired)
	})
}

func TestCancelLeave(t *testing.T) {
	t.Run("success by owner", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")

		f.leaves.transitionFn = func(_ context.Context, _ string, from, to Status, patch StatusPatch) (int64, error) {
			assert.Equal(t, StatusPending, from)
			assert.Equal(t, StatusCancelled, to)
			assert.Equal(t, employeeID, *patch.OwnerID)
			return 1, nil
		}
		cancelled := *l
		cancelled.Status = StatusCancelled
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return &cancelled, nil }

		charges := 0
		f.balances.incrementFn = func(context.Context, string, int, string, decimal.Decimal) error {
			charges++
			return nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.svc.Cancel(context.Background(), employeeActor, l.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Zero(t, charges)
		assert.Len(t, f.audits.recorded, 1)
		assert.Equal(t, audit.ActionCancel, f.audits.recorded[0].Action)
	})

	t.Run("negative not the owner", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")

		other := authz.Actor{ID: uuid.NewString(), Role: authz.RoleEmployee}
		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 0, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Cancel(context.Background(), other, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrNotRequestOwner)
	})

	t.Run("negative already approved", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		l.Status = StatusApproved

		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 0, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Cancel(context.Background(), employeeActor, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrCancelNotPending)
	})

	t.Run("negative unknown id", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())

		f.leaves.transitionFn = func(context.Context, string, Status, Status, StatusPatch) (int64, error) { return 0, nil }
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return nil, gorm.ErrRecordNotFound }

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Cancel(context.Background(), employeeActor, uuid.NewString())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestEditLeave(t *testing.T) {
	validReq := EditLeaveRequest{
		LeaveType: TypeSick,
		StartDate: "2024-04-01",
		EndDate:   "2024-04-05",
		Reason:    "recovering from surgery",
	}

	t.Run("success recomputes day count", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")

		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }
		var updated *Leave
		f.leaves.updateFn = func(_ context.Context, u *Leave) (int64, error) {
			updated = u
			return 1, nil
		}

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.svc.Edit(context.Background(), employeeActor, l.ID.String(), validReq)
		assert.NoError(t, err)
		assert.Equal(t, "5", resp.DaysCount)
		assert.Equal(t, TypeSick, updated.LeaveType)
	})

	t.Run("negative not the owner", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		other := authz.Actor{ID: uuid.NewString(), Role: authz.RoleEmployee}

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Edit(context.Background(), other, l.ID.String(), validReq)
		assert.ErrorIs(t, err, leaveerrors.ErrNotRequestOwner)
	})

	t.Run("negative no longer pending", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		l.Status = StatusApproved
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Edit(context.Background(), employeeActor, l.ID.String(), validReq)
		assert.ErrorIs(t, err, leaveerrors.ErrEditNotPending)
	})

	t.Run("negative guard lost between read and write", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }
		f.leaves.updateFn = func(context.Context, *Leave) (int64, error) { return 0, nil }

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.Edit(context.Background(), employeeActor, l.ID.String(), validReq)
		assert.ErrorIs(t, err, leaveerrors.ErrEditNotPending)
	})
}

func TestGetLeaves(t *testing.T) {
	t.Run("success employee list is forced to own requests", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())

		var gotFilter ListFilter
		f.leaves.findAllFn = func(_ context.Context, filter ListFilter) ([]Leave, error) {
			gotFilter = filter
			return []Leave{*pendingLeave("3")}, nil
		}

		_, err := f.svc.GetAll(context.Background(), employeeActor, ListFilter{EmployeeID: uuid.NewString()})
		assert.NoError(t, err)
		assert.Equal(t, employeeID.String(), gotFilter.EmployeeID)
	})

	t.Run("success approver list keeps the requested filter", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())

		wanted := uuid.NewString()
		var gotFilter ListFilter
		f.leaves.findAllFn = func(_ context.Context, filter ListFilter) ([]Leave, error) {
			gotFilter = filter
			return nil, nil
		}

		_, err := f.svc.GetAll(context.Background(), approverActor, ListFilter{EmployeeID: wanted, Status: "pending"})
		assert.NoError(t, err)
		assert.Equal(t, wanted, gotFilter.EmployeeID)
		assert.Equal(t, "pending", gotFilter.Status)
	})

	t.Run("success approver reads someone else's request", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		resp, err := f.svc.GetByID(context.Background(), approverActor, l.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, l.ID.String(), resp.ID)
	})

	t.Run("negative employee reads someone else's request", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		l := pendingLeave("3")
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return l, nil }

		other := authz.Actor{ID: uuid.NewString(), Role: authz.RoleEmployee}
		_, err := f.svc.GetByID(context.Background(), other, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrNotRequestOwner)
	})

	t.Run("negative unknown id", func(t *testing.T) {
		f := newServiceFixture(t, DefaultPolicy())
		f.leaves.findByIDFn = func(context.Context, string) (*Leave, error) { return nil, gorm.ErrRecordNotFound }

		_, err := f.svc.GetByID(context.Background(), employeeActor, uuid.NewString())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}
