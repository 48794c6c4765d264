package employeeerrors

import (
	"net/http"

	"go-leavetrack/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"email is already registered",
		http.StatusConflict,
	)
	ErrUnknownRole = apperror.New(
		apperror.CodeInvalidInput,
		"role must be employee or approver",
		http.StatusBadRequest,
	)
	ErrManageRequired = apperror.New(
		apperror.CodeUnauthorized,
		"only approvers may manage the directory",
		http.StatusForbidden,
	)
)
