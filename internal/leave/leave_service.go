package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-leavetrack/internal/audit"
	"go-leavetrack/internal/authz"
	"go-leavetrack/internal/balance"
	"go-leavetrack/internal/events"
	leaveerrors "go-leavetrack/internal/leave/errors"
	"go-leavetrack/internal/messaging/kafka"
	"go-leavetrack/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minReasonLength = 5

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor authz.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actor authz.Actor, filter ListFilter) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error)
	Edit(ctx context.Context, actor authz.Actor, id string, req EditLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor authz.Actor, id, rejectionReason string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances balance.Repository
	audits   audit.Repository
	outbox   kafka.OutboxRepository
	authz    authz.Service
	policy   ApprovalPolicy
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	audits audit.Repository,
	authzService authz.Service,
	policy ApprovalPolicy,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, balances, audits, nil, authzService, policy, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	audits audit.Repository,
	outboxRepo kafka.OutboxRepository,
	authzService authz.Service,
	policy ApprovalPolicy,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: balances,
		audits:   audits,
		outbox:   outboxRepo,
		authz:    authzService,
		policy:   policy,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actor authz.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	ownerID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	fields, err := validateFields(req.LeaveType, req.StartDate, req.EndDate, req.Reason, req.IsHalfDay, req.HalfDayPeriod)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l := &Leave{
		ID:            uuid.New(),
		EmployeeID:    ownerID,
		LeaveType:     fields.leaveType,
		StartDate:     fields.startDate,
		EndDate:       fields.endDate,
		IsHalfDay:     fields.isHalfDay,
		HalfDayPeriod: fields.halfDayPeriod,
		Reason:        fields.reason,
		DaysCount:     fields.daysCount,
		Status:        StatusPending,
		CreatedAt:     s.now().UTC(),
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", actor.ID),
		zap.String("days_count", l.DaysCount.String()),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, actor authz.Actor, filter ListFilter) ([]LeaveResponse, error) {
	readAll, err := s.authz.Can(actor, authz.ResourceLeave, authz.ActionReadAll)
	if err != nil {
		return nil, err
	}
	if !readAll {
		filter.EmployeeID = actor.ID
	}

	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if l.EmployeeID.String() != actor.ID {
		readAll, err := s.authz.Can(actor, authz.ResourceLeave, authz.ActionReadAll)
		if err != nil {
			return LeaveResponse{}, err
		}
		if !readAll {
			return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
		}
	}

	return mapToResponse(*l), nil
}

// Approve transitions pending -> approved and charges the owner's balance.
// The conditional status update, the balance increment, the audit row and
// the outbox event commit or roll back together; a request can never end up
// approved with its balance uncharged.
func (s *service) Approve(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("approve leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	approverID, err := s.requireApprover(actor, authz.ActionApprove)
	if err != nil {
		return LeaveResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	decidedAt := s.now().UTC()
	rows, err := qtx.TransitionStatus(ctx, id, StatusPending, StatusApproved, StatusPatch{
		ApprovedBy: &approverID,
		ApprovedAt: &decidedAt,
	})
	if err != nil {
		s.logger.Error("approve leave transition failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if rows == 0 {
		return LeaveResponse{}, s.classifyLostGuard(ctx, qtx, id)
	}

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("approve leave reload failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	year := s.policy.BalanceYear(l.StartDate, decidedAt)
	qb := s.balances.WithTx(tx)

	if s.policy.Overdraft == OverdraftReject {
		bal, err := qb.GetForUpdate(ctx, l.EmployeeID.String(), year, l.LeaveType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("approve leave no balance row",
					zap.String("leave_id", id),
					zap.Int("year", year),
					zap.String("leave_type", l.LeaveType),
				)
				return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
			}
			return LeaveResponse{}, err
		}
		if bal.Remaining().LessThan(l.DaysCount) {
			s.logger.Warn("approve leave would overdraw balance",
				zap.String("leave_id", id),
				zap.String("remaining", bal.Remaining().String()),
				zap.String("days_count", l.DaysCount.String()),
			)
			return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
		}
	}

	if err := qb.IncrementUsed(ctx, l.EmployeeID.String(), year, l.LeaveType, l.DaysCount); err != nil {
		s.logger.Error("approve leave balance increment failed",
			zap.String("leave_id", id),
			zap.Int("year", year),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := s.audits.WithTx(tx).Record(ctx, &audit.Action{
		LeaveID: l.ID,
		ActorID: approverID,
		Action:  audit.ActionApprove,
	}); err != nil {
		s.logger.Error("approve leave audit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.queueDecisionEvent(ctx, tx, rid, l, events.EventTypeLeaveApproved, actor.ID, decidedAt); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("approve leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("approver_id", actor.ID),
		zap.Int("balance_year", year),
		zap.String("days_count", l.DaysCount.String()),
	)

	return mapToResponse(*l), nil
}

// Reject transitions pending -> rejected. Balances are never touched.
func (s *service) Reject(ctx context.Context, actor authz.Actor, id, rejectionReason string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("reject leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	approverID, err := s.requireApprover(actor, authz.ActionReject)
	if err != nil {
		return LeaveResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	patch := StatusPatch{}
	if trimmed := strings.TrimSpace(rejectionReason); trimmed != "" {
		patch.RejectionReason = &trimmed
	}

	rows, err := qtx.TransitionStatus(ctx, id, StatusPending, StatusRejected, patch)
	if err != nil {
		s.logger.Error("reject leave transition failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if rows == 0 {
		return LeaveResponse{}, s.classifyLostGuard(ctx, qtx, id)
	}

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("reject leave reload failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.audits.WithTx(tx).Record(ctx, &audit.Action{
		LeaveID: l.ID,
		ActorID: approverID,
		Action:  audit.ActionReject,
		Note:    rejectionReason,
	}); err != nil {
		s.logger.Error("reject leave audit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.queueDecisionEvent(ctx, tx, rid, l, events.EventTypeLeaveRejected, actor.ID, s.now().UTC()); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("reject leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("approver_id", actor.ID),
	)

	return mapToResponse(*l), nil
}

// Cancel transitions pending -> cancelled, scoped to the owning employee.
// Balances are never touched: nothing was charged at creation time.
func (s *service) Cancel(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("cancel leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	ownerID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rows, err := qtx.TransitionStatus(ctx, id, StatusPending, StatusCancelled, StatusPatch{
		OwnerID: &ownerID,
	})
	if err != nil {
		s.logger.Error("cancel leave transition failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if rows == 0 {
		// The guard can lose three ways; read the row to tell them apart.
		l, findErr := qtx.FindByID(ctx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
			}
			return LeaveResponse{}, findErr
		}
		if l.EmployeeID != ownerID {
			return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
		}
		return LeaveResponse{}, leaveerrors.ErrCancelNotPending
	}

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("cancel leave reload failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.audits.WithTx(tx).Record(ctx, &audit.Action{
		LeaveID: l.ID,
		ActorID: ownerID,
		Action:  audit.ActionCancel,
	}); err != nil {
		s.logger.Error("cancel leave audit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("cancel leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("employee_id", actor.ID),
	)

	return mapToResponse(*l), nil
}

// Edit overwrites the mutable fields of the caller's own pending request
// and recomputes days_count. The final write is still guarded by
// status = pending so a concurrent decision wins over a stale edit.
func (s *service) Edit(ctx context.Context, actor authz.Actor, id string, req EditLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("edit leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	ownerID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	fields, err := validateFields(req.LeaveType, req.StartDate, req.EndDate, req.Reason, req.IsHalfDay, req.HalfDayPeriod)
	if err != nil {
		s.logger.Warn("edit leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("edit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.EmployeeID != ownerID {
		return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrEditNotPending
	}

	l.LeaveType = fields.leaveType
	l.StartDate = fields.startDate
	l.EndDate = fields.endDate
	l.IsHalfDay = fields.isHalfDay
	l.HalfDayPeriod = fields.halfDayPeriod
	l.Reason = fields.reason
	l.DaysCount = fields.daysCount

	rows, err := qtx.UpdatePending(ctx, l)
	if err != nil {
		s.logger.Error("edit leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if rows == 0 {
		return LeaveResponse{}, leaveerrors.ErrEditNotPending
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("edit leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("edit leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("days_count", l.DaysCount.String()),
	)

	return mapToResponse(*l), nil
}

func (s *service) requireApprover(actor authz.Actor, action string) (uuid.UUID, error) {
	allowed, err := s.authz.Can(actor, authz.ResourceLeave, action)
	if err != nil {
		return uuid.Nil, err
	}
	if !allowed {
		s.logger.Warn("lifecycle action denied",
			zap.String("actor_id", actor.ID),
			zap.String("role", actor.Role),
			zap.String("action", action),
		)
		return uuid.Nil, leaveerrors.ErrApproverRequired
	}
	actorID, err := uuid.Parse(actor.ID)
	if err != nil {
		return uuid.Nil, leaveerrors.ErrInvalidActorID
	}
	return actorID, nil
}

// classifyLostGuard maps a zero-row conditional update to NotFound when the
// request does not exist and AlreadyProcessed when it is already terminal.
func (s *service) classifyLostGuard(ctx context.Context, qtx Repository, id string) error {
	_, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	return leaveerrors.ErrAlreadyProcessed
}

func (s *service) queueDecisionEvent(ctx context.Context, tx *sql.Tx, rid string, l *Leave, eventType, decidedBy string, occurredAt time.Time) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.LeaveDecidedEvent{
		EventType:  eventType,
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		DaysCount:  l.DaysCount.String(),
		DecidedBy:  decidedBy,
		OccurredAt: occurredAt,
	})
	if err != nil {
		s.logger.Error("marshal decision event failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue decision event failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

type requestFields struct {
	leaveType     string
	startDate     time.Time
	endDate       time.Time
	isHalfDay     bool
	halfDayPeriod *string
	reason        string
	daysCount     decimal.Decimal
}

func validateFields(leaveType, startDate, endDate, reason string, isHalfDay bool, halfDayPeriod string) (requestFields, error) {
	if strings.TrimSpace(leaveType) == "" {
		return requestFields{}, leaveerrors.ErrLeaveTypeRequired
	}

	trimmedReason := strings.TrimSpace(reason)
	if len(trimmedReason) < minReasonLength {
		return requestFields{}, leaveerrors.ErrReasonTooShort
	}

	start, err := parseDate(startDate)
	if err != nil {
		return requestFields{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return requestFields{}, err
	}

	var period *string
	if isHalfDay {
		if halfDayPeriod != HalfDayMorning && halfDayPeriod != HalfDayAfternoon {
			return requestFields{}, leaveerrors.ErrHalfDayPeriodRequired
		}
		period = &halfDayPeriod
	}

	days, err := DayCount(start, end, isHalfDay)
	if err != nil {
		return requestFields{}, err
	}

	return requestFields{
		leaveType:     leaveType,
		startDate:     start,
		endDate:       end,
		isHalfDay:     isHalfDay,
		halfDayPeriod: period,
		reason:        trimmedReason,
		daysCount:     days,
	}, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID.String(),
		EmployeeID:    l.EmployeeID.String(),
		LeaveType:     l.LeaveType,
		StartDate:     l.StartDate.Format("2006-01-02"),
		EndDate:       l.EndDate.Format("2006-01-02"),
		IsHalfDay:     l.IsHalfDay,
		HalfDayPeriod: l.HalfDayPeriod,
		Reason:        l.Reason,
		DaysCount:     l.DaysCount.String(),
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
