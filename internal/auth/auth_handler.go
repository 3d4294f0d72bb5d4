package auth

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Waihonggg/leave-app-system/internal/shared/apperror"
	"github.com/Waihonggg/leave-app-system/internal/shared/response"
)

const SessionCookie = "session_token"

type Handler struct {
	service   Service
	cookieAge int
	logger    *zap.Logger
}

func NewHandler(service Service, cookieAgeSeconds int, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: service, cookieAge: cookieAgeSeconds, logger: l}
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	isProd := os.Getenv("APP_ENV") == "production"
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   h.cookieAge,
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteLaxMode,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Login successful.",
		"username": sess.Username,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		h.logger.Warn("logout session delete failed", zap.Error(err))
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
