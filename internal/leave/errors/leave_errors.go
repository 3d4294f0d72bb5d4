package leaveerrors

import (
	"net/http"

	"github.com/Waihonggg/leave-app-system/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must be on or after start date",
		http.StatusBadRequest,
	)
	ErrWeekendSingleDay = apperror.New(
		apperror.CodeInvalidInput,
		"single-day leave cannot fall on a weekend",
		http.StatusBadRequest,
	)
	ErrWeekendOnly = apperror.New(
		apperror.CodeInvalidInput,
		"selected dates fall entirely on weekends",
		http.StatusBadRequest,
	)
	ErrNonPositiveDays = apperror.New(
		apperror.CodeInvalidInput,
		"leave request must cover at least one day",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidInput,
		"insufficient leave balance",
		http.StatusBadRequest,
	)
	ErrInsufficientMCBalance = apperror.New(
		apperror.CodeInvalidInput,
		"insufficient MC balance",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave application not found",
		http.StatusNotFound,
	)
	// Stale-link defense: the id in the request must match the id stored in
	// the referenced row.
	ErrApplicationMismatch = apperror.New(
		apperror.CodeConflict,
		"application id does not match the referenced row",
		http.StatusBadRequest,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave status cannot change from its current state",
		http.StatusBadRequest,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the applicant can cancel this application",
		http.StatusForbidden,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending applications can be cancelled",
		http.StatusBadRequest,
	)
)
