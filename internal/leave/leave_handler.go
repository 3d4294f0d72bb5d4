package leave

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Waihonggg/leave-app-system/internal/shared/apperror"
	"github.com/Waihonggg/leave-app-system/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// LeaveData serves the dashboard aggregate for the session user.
func (h *Handler) LeaveData(c *gin.Context) {
	username := c.GetString("username")

	resp, err := h.service.LeaveData(c.Request.Context(), username)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Apply validates and submits a leave application for the session user.
func (h *Handler) Apply(c *gin.Context) {
	username := c.GetString("username")

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	app, err := h.service.Submit(c.Request.Context(), username, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Leave application submitted. Status: Pending approval.",
		"applicationId": app.ID,
	})
}

// Approve and Reject are reached from emailed links as well as the dashboard,
// so they answer with a human-readable HTML page rather than the JSON
// envelope.
func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, ActionApprove)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, ActionReject)
}

func (h *Handler) decide(c *gin.Context, action Action) {
	rowNum, err1 := strconv.Atoi(c.Query("row"))
	id, err2 := strconv.Atoi(c.Query("id"))
	if err1 != nil || err2 != nil {
		h.writeDecisionPage(c, http.StatusBadRequest, "Invalid link", "The row and id parameters are required.")
		return
	}

	result, err := h.service.Decide(c.Request.Context(), rowNum, id, action)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("decision request failed",
			zap.Int("row", rowNum),
			zap.Int("application_id", id),
			zap.String("action", string(action)),
			zap.String("code", httpErr.Code),
		)
		h.writeDecisionPage(c, httpErr.Status, "Action failed", httpErr.Message)
		return
	}

	h.writeDecisionPage(c, http.StatusOK, "Leave application", result.Message)
}

func (h *Handler) writeDecisionPage(c *gin.Context, status int, title, message string) {
	body := fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>%s</title></head><body><h2>%s</h2><p>%s</p></body></html>",
		title, title, message,
	)
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

// CancelLeave lets the owning user withdraw a still-pending application.
func (h *Handler) CancelLeave(c *gin.Context) {
	username := c.GetString("username")

	var req CancelLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), username, req); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, fmt.Sprintf("Leave application #%d cancelled.", req.ApplicationID))
}
