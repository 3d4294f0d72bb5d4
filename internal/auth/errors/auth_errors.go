package autherrors

import (
	"net/http"

	"github.com/Waihonggg/leave-app-system/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"invalid username or password",
		http.StatusUnauthorized,
	)
	ErrSessionExpired = apperror.New(
		apperror.CodeUnauthorized,
		"session expired or not found",
		http.StatusUnauthorized,
	)
)
