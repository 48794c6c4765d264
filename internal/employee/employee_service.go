package employee

import (
	"context"
	"database/sql"
	"errors"

	"go-leavetrack/internal/authz"
	employeeerrors "go-leavetrack/internal/employee/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, actor authz.Actor) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (EmployeeResponse, error)
	UpdateRole(ctx context.Context, actor authz.Actor, id string, req UpdateRoleRequest) (EmployeeResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	authz  authz.Service
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, authzService authz.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, authz: authzService, logger: l}
}

func (s *service) List(ctx context.Context, actor authz.Actor) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("list employees failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(employees), nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

// UpdateRole changes the directory role. The new role takes effect on the
// next login; outstanding tokens keep their embedded role until expiry.
func (s *service) UpdateRole(ctx context.Context, actor authz.Actor, id string, req UpdateRoleRequest) (EmployeeResponse, error) {
	allowed, err := s.authz.Can(actor, authz.ResourceEmployee, authz.ActionManage)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if !allowed {
		s.logger.Warn("update role denied", zap.String("actor_id", actor.ID), zap.String("role", actor.Role))
		return EmployeeResponse{}, employeeerrors.ErrManageRequired
	}

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	if req.Role != authz.RoleEmployee && req.Role != authz.RoleApprover {
		return EmployeeResponse{}, employeeerrors.ErrUnknownRole
	}

	rows, err := s.repo.UpdateRole(ctx, id, req.Role)
	if err != nil {
		s.logger.Error("update role failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, err
	}
	if rows == 0 {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}

	s.logger.Info("update role success",
		zap.String("employee_id", id),
		zap.String("new_role", req.Role),
		zap.String("actor_id", actor.ID),
	)
	return mapToResponse(*e), nil
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:       e.ID.String(),
		FullName: e.FullName,
		Email:    e.Email,
		Role:     e.Role,
	}
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
