package balance

import (
	"context"
	"database/sql"
	"errors"

	"go-leavetrack/internal/authz"
	balanceerrors "go-leavetrack/internal/balance/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetForEmployee(ctx context.Context, actor authz.Actor, employeeID string, year int) ([]BalanceResponse, error)
	SetBalance(ctx context.Context, actor authz.Actor, id string, req SetBalanceRequest) (BalanceResponse, error)
	ResetYear(ctx context.Context, actor authz.Actor, employeeID string, year int) ([]BalanceResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	authz    authz.Service
	defaults func() map[string]decimal.Decimal
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, authzService authz.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		authz:    authzService,
		defaults: DefaultAllocations,
		logger:   l,
	}
}

func (s *service) GetForEmployee(ctx context.Context, actor authz.Actor, employeeID string, year int) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	if employeeID != actor.ID {
		allowed, err := s.authz.Can(actor, authz.ResourceBalance, authz.ActionReadAll)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, balanceerrors.ErrApproverRequired
		}
	}

	balances, err := s.repo.FindByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("get balances failed",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func (s *service) SetBalance(ctx context.Context, actor authz.Actor, id string, req SetBalanceRequest) (BalanceResponse, error) {
	s.logger.Debug("set balance requested",
		zap.String("balance_id", id),
		zap.String("actor_id", actor.ID),
		zap.Float64("allocated", req.Allocated),
		zap.Float64("used", req.Used),
	)

	allowed, err := s.authz.Can(actor, authz.ResourceBalance, authz.ActionWrite)
	if err != nil {
		return BalanceResponse{}, err
	}
	if !allowed {
		s.logger.Warn("set balance denied", zap.String("actor_id", actor.ID), zap.String("role", actor.Role))
		return BalanceResponse{}, balanceerrors.ErrApproverRequired
	}

	if _, err := uuid.Parse(id); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidBalanceID
	}
	// The override may set used > allocated; negatives are the only thing
	// rejected here.
	if req.Allocated < 0 || req.Used < 0 {
		return BalanceResponse{}, balanceerrors.ErrNegativeValue
	}

	allocated := decimal.NewFromFloat(req.Allocated)
	used := decimal.NewFromFloat(req.Used)

	rows, err := s.repo.Overwrite(ctx, id, allocated, used)
	if err != nil {
		s.logger.Error("set balance persist failed", zap.String("balance_id", id), zap.Error(err))
		return BalanceResponse{}, err
	}
	if rows == 0 {
		return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
		}
		return BalanceResponse{}, err
	}

	s.logger.Info("set balance success",
		zap.String("balance_id", id),
		zap.String("actor_id", actor.ID),
	)
	return mapToResponse(*b), nil
}

func (s *service) ResetYear(ctx context.Context, actor authz.Actor, employeeID string, year int) ([]BalanceResponse, error) {
	s.logger.Debug("reset year requested",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.String("actor_id", actor.ID),
	)

	allowed, err := s.authz.Can(actor, authz.ResourceBalance, authz.ActionReset)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Warn("reset year denied", zap.String("actor_id", actor.ID), zap.String("role", actor.Role))
		return nil, balanceerrors.ErrApproverRequired
	}

	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}
	if year < 2000 || year > 2100 {
		return nil, balanceerrors.ErrInvalidYear
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reset year begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.DeleteYear(ctx, employeeID, year); err != nil {
		s.logger.Error("reset year delete failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	if err := qtx.SeedYear(ctx, employeeID, year, s.defaults()); err != nil {
		s.logger.Error("reset year seed failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reset year commit failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("reset year success",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.String("actor_id", actor.ID),
	)

	balances, err := s.repo.FindByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func mapToResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		ID:         b.ID.String(),
		EmployeeID: b.EmployeeID.String(),
		Year:       b.Year,
		LeaveType:  b.LeaveType,
		Allocated:  b.Allocated.String(),
		Used:       b.Used.String(),
		Remaining:  b.Remaining().String(),
	}
}

func mapToListResponse(balances []Balance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
