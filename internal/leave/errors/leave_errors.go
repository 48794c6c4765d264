package leaveerrors

import (
	"net/http"

	"go-leavetrack/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidRange,
		"end_date must not be before start_date",
		http.StatusBadRequest,
	)
	ErrReasonTooShort = apperror.New(
		apperror.CodeInvalidInput,
		"reason must be at least 5 characters",
		http.StatusBadRequest,
	)
	ErrLeaveTypeRequired = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type is required",
		http.StatusBadRequest,
	)
	ErrHalfDayPeriodRequired = apperror.New(
		apperror.CodeInvalidInput,
		"half_day_period must be morning or afternoon for half-day requests",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeAlreadyProcessed,
		"leave request has already been processed",
		http.StatusConflict,
	)
	ErrApproverRequired = apperror.New(
		apperror.CodeUnauthorized,
		"only approvers may perform this action",
		http.StatusForbidden,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeUnauthorized,
		"only the request owner may perform this action",
		http.StatusForbidden,
	)
	ErrCancelNotPending = apperror.New(
		apperror.CodeInvalidState,
		"can only cancel pending requests",
		http.StatusConflict,
	)
	ErrEditNotPending = apperror.New(
		apperror.CodeInvalidState,
		"can only edit pending requests",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"approval would exceed the allocated balance",
		http.StatusConflict,
	)
)
