package leave

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Waihonggg/leave-app-system/internal/config"
	"github.com/Waihonggg/leave-app-system/internal/events"
	"github.com/Waihonggg/leave-app-system/internal/ledger"
	leaveerrors "github.com/Waihonggg/leave-app-system/internal/leave/errors"
	"github.com/Waihonggg/leave-app-system/internal/notify"
	"github.com/Waihonggg/leave-app-system/internal/sheet"
	"github.com/Waihonggg/leave-app-system/internal/shared/apperror"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Policies are the configurable workflow choices the observed behavior left
// implicit: weekend handling, when the balance is reserved, and whether a
// decided application can flip between Approved and Rejected.
type Policies struct {
	ExcludeWeekends     bool
	AllowStatusReversal bool
	ReservationPolicy   string
	BaseURL             string
}

// DecisionResult reports a Decide call. Changed is false for the idempotent
// case where the application already carried the target status; no ledger or
// log mutation happened then.
type DecisionResult struct {
	Application Application
	Changed     bool
	Message     string
}

type Service interface {
	Submit(ctx context.Context, username string, req ApplyLeaveRequest) (*Application, error)
	Decide(ctx context.Context, rowNum, id int, action Action) (DecisionResult, error)
	Cancel(ctx context.Context, username string, req CancelLeaveRequest) error
	LeaveData(ctx context.Context, username string) (LeaveDataResponse, error)
}

type service struct {
	repo      Repository
	ledger    ledger.Repository
	mailer    notify.Mailer
	publisher events.Publisher
	pol       Policies
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	ledgerRepo ledger.Repository,
	mailer notify.Mailer,
	publisher events.Publisher,
	pol Policies,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{
		repo:      repo,
		ledger:    ledgerRepo,
		mailer:    mailer,
		publisher: publisher,
		pol:       pol,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, username string, req ApplyLeaveRequest) (*Application, error) {
	s.logger.Debug("submit leave requested",
		zap.String("username", username),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return nil, leaveerrors.ErrInvalidDateRange
	}
	if start.Equal(end) && IsWeekend(start) {
		return nil, leaveerrors.ErrWeekendSingleDay
	}

	days := CountBusinessDays(start, end, s.pol.ExcludeWeekends)
	if days <= 0 {
		if s.pol.ExcludeWeekends {
			return nil, leaveerrors.ErrWeekendOnly
		}
		return nil, leaveerrors.ErrNonPositiveDays
	}

	row, err := s.ledger.Get(ctx, username)
	if err != nil {
		return nil, mapLedgerErr(err)
	}

	kind := ledger.KindFor(req.LeaveType)
	if kind == ledger.KindMC {
		if row.MCBalance < days {
			return nil, leaveerrors.ErrInsufficientMCBalance
		}
	} else if row.LeaveBalance < days {
		return nil, leaveerrors.ErrInsufficientBalance
	}

	app := &Application{
		Username:  row.Username,
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Reason:    req.Reason,
		Status:    StatusPending,
	}
	if err := s.repo.Append(ctx, app); err != nil {
		s.logger.Error("submit leave append failed", zap.Error(err))
		return nil, upstream(err, "failed to record leave application")
	}

	if s.pol.ReservationPolicy == config.ReservationOptimistic {
		if _, err := s.ledger.ApplyUsage(ctx, app.Username, start.Month(), kind, days); err != nil {
			// The application row is already in the log. Compensate by
			// cancelling it so the reservation never half-applies.
			s.logger.Error("submit leave reservation failed",
				zap.Int("application_id", app.ID),
				zap.Error(err),
			)
			if cErr := s.repo.UpdateStatus(ctx, app.SheetRow, StatusCancelled); cErr != nil {
				s.logger.Error("submit leave compensation failed",
					zap.Int("application_id", app.ID),
					zap.Error(cErr),
				)
			}
			return nil, upstream(err, "failed to reserve leave balance")
		}
	}

	s.notifyManager(ctx, row, app)
	s.publish(ctx, events.TypeSubmitted, app)

	s.logger.Info("submit leave success",
		zap.Int("application_id", app.ID),
		zap.String("username", app.Username),
		zap.Int("days", days),
	)
	return app, nil
}

func (s *service) Decide(ctx context.Context, rowNum, id int, action Action) (DecisionResult, error) {
	s.logger.Debug("decide leave requested",
		zap.Int("row", rowNum),
		zap.Int("application_id", id),
		zap.String("action", string(action)),
	)

	var target string
	switch action {
	case ActionApprove:
		target = StatusApproved
	case ActionReject:
		target = StatusRejected
	default:
		return DecisionResult{}, apperror.ErrInvalidInput
	}

	app, err := s.findApplication(ctx, rowNum)
	if err != nil {
		return DecisionResult{}, err
	}
	if app.ID != id {
		s.logger.Warn("decide leave id mismatch",
			zap.Int("row", rowNum),
			zap.Int("requested_id", id),
			zap.Int("stored_id", app.ID),
		)
		return DecisionResult{}, leaveerrors.ErrApplicationMismatch
	}

	if app.Status == target {
		return DecisionResult{
			Application: *app,
			Changed:     false,
			Message:     fmt.Sprintf("Leave application #%d is already %s.", app.ID, strings.ToLower(target)),
		}, nil
	}
	if !s.allowedTransition(app.Status, target) {
		s.logger.Warn("decide leave transition rejected",
			zap.Int("application_id", app.ID),
			zap.String("from", app.Status),
			zap.String("to", target),
		)
		return DecisionResult{}, leaveerrors.ErrInvalidTransition
	}

	prev := app.Status
	if err := s.repo.UpdateStatus(ctx, rowNum, target); err != nil {
		s.logger.Error("decide leave status update failed", zap.Error(err))
		return DecisionResult{}, upstream(err, "failed to update application status")
	}

	if delta := s.usageDelta(prev, target); delta != 0 {
		kind := ledger.KindFor(app.LeaveType)
		if _, err := s.ledger.ApplyUsage(ctx, app.Username, app.StartDate.Month(), kind, delta*app.Days); err != nil {
			// Status cell is already written. Roll it back so the log and
			// the ledger stay in agreement.
			s.logger.Error("decide leave ledger update failed",
				zap.Int("application_id", app.ID),
				zap.Error(err),
			)
			if rbErr := s.repo.UpdateStatus(ctx, rowNum, prev); rbErr != nil {
				s.logger.Error("decide leave compensation failed",
					zap.Int("application_id", app.ID),
					zap.Error(rbErr),
				)
			}
			return DecisionResult{}, upstream(err, "failed to update leave balance")
		}
	}
	app.Status = target

	s.notifyApplicant(ctx, app)
	eventType := events.TypeApproved
	if target == StatusRejected {
		eventType = events.TypeRejected
	}
	s.publish(ctx, eventType, app)

	s.logger.Info("decide leave success",
		zap.Int("application_id", app.ID),
		zap.String("from", prev),
		zap.String("to", target),
	)
	return DecisionResult{
		Application: *app,
		Changed:     true,
		Message:     fmt.Sprintf("Leave application #%d has been %s.", app.ID, strings.ToLower(target)),
	}, nil
}

func (s *service) Cancel(ctx context.Context, username string, req CancelLeaveRequest) error {
	app, err := s.findApplication(ctx, req.RowNumber)
	if err != nil {
		return err
	}
	if app.ID != req.ApplicationID {
		return leaveerrors.ErrApplicationMismatch
	}
	if !strings.EqualFold(strings.TrimSpace(app.Username), strings.TrimSpace(username)) {
		return leaveerrors.ErrNotOwner
	}
	if app.Status != StatusPending {
		return leaveerrors.ErrNotPending
	}

	if err := s.repo.UpdateStatus(ctx, app.SheetRow, StatusCancelled); err != nil {
		s.logger.Error("cancel leave status update failed", zap.Error(err))
		return upstream(err, "failed to cancel application")
	}

	if s.pol.ReservationPolicy == config.ReservationOptimistic {
		kind := ledger.KindFor(app.LeaveType)
		if _, err := s.ledger.ApplyUsage(ctx, app.Username, app.StartDate.Month(), kind, -app.Days); err != nil {
			s.logger.Error("cancel leave credit-back failed",
				zap.Int("application_id", app.ID),
				zap.Error(err),
			)
			if rbErr := s.repo.UpdateStatus(ctx, app.SheetRow, StatusPending); rbErr != nil {
				s.logger.Error("cancel leave compensation failed",
					zap.Int("application_id", app.ID),
					zap.Error(rbErr),
				)
			}
			return upstream(err, "failed to release reserved balance")
		}
	}

	app.Status = StatusCancelled
	s.publish(ctx, events.TypeCancelled, app)

	s.logger.Info("cancel leave success",
		zap.Int("application_id", app.ID),
		zap.String("username", app.Username),
	)
	return nil
}

func (s *service) LeaveData(ctx context.Context, username string) (LeaveDataResponse, error) {
	row, err := s.ledger.Get(ctx, username)
	if err != nil {
		return LeaveDataResponse{}, mapLedgerErr(err)
	}
	apps, err := s.repo.ListByUser(ctx, row.Username)
	if err != nil {
		return LeaveDataResponse{}, upstream(err, "failed to read application log")
	}

	monthly := make(map[string]MonthBreakdown, 12)
	for m := time.January; m <= time.December; m++ {
		u := row.Usage(m)
		monthly[m.String()] = MonthBreakdown{Leave: u.Leave, MC: u.MC}
	}

	resp := LeaveDataResponse{
		Username:           row.Username,
		CarryForward:       row.CarryForward,
		AnnualLeave:        row.AnnualLeave,
		CompassionateLeave: row.CompassionateLeave,
		TotalLeave:         row.TotalLeave,
		MonthlyData:        monthly,
		LeaveTaken:         row.LeaveTaken,
		LeaveBalance:       row.LeaveBalance,
		MCTaken:            row.MCTaken,
		MCBalance:          row.MCBalance,
		Applications:       make([]ApplicationResponse, 0, len(apps)),
	}
	for _, a := range apps {
		resp.Applications = append(resp.Applications, ApplicationResponse{
			ID:        a.ID,
			LeaveType: a.LeaveType,
			StartDate: a.StartDate.Format(dateLayout),
			EndDate:   a.EndDate.Format(dateLayout),
			Days:      a.Days,
			Reason:    a.Reason,
			Status:    a.Status,
			RowNumber: a.SheetRow,
		})
	}
	return resp, nil
}

// allowedTransition encodes the state machine: Pending moves to Approved or
// Rejected; flipping between the two decided states needs the reversal
// policy; Cancelled is terminal.
func (s *service) allowedTransition(current, target string) bool {
	switch current {
	case StatusPending:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusRejected && s.pol.AllowStatusReversal
	case StatusRejected:
		return target == StatusApproved && s.pol.AllowStatusReversal
	default:
		return false
	}
}

// usageDelta returns the sign of the ledger booking a transition causes,
// given the reservation policy. Zero means the ledger is untouched.
func (s *service) usageDelta(prev, target string) int {
	optimistic := s.pol.ReservationPolicy == config.ReservationOptimistic
	switch {
	case prev == StatusPending && target == StatusApproved:
		if optimistic {
			return 0 // already reserved at submission
		}
		return 1
	case prev == StatusPending && target == StatusRejected:
		if optimistic {
			return -1
		}
		return 0
	case prev == StatusApproved && target == StatusRejected:
		return -1
	case prev == StatusRejected && target == StatusApproved:
		return 1
	default:
		return 0
	}
}

func (s *service) findApplication(ctx context.Context, rowNum int) (*Application, error) {
	app, err := s.repo.FindByRow(ctx, rowNum)
	if err != nil {
		if errors.Is(err, sheet.ErrRowOutOfRange) {
			return nil, leaveerrors.ErrApplicationNotFound
		}
		return nil, upstream(err, "failed to read application log")
	}
	if app.ID == 0 {
		return nil, leaveerrors.ErrApplicationNotFound
	}
	return app, nil
}

// notifyManager resolves the applicant's manager through the ledger and mails
// the approval links. Every miss along the way degrades to a logged warning;
// the submission itself already succeeded.
func (s *service) notifyManager(ctx context.Context, row *ledger.Row, app *Application) {
	if row.Manager == "" {
		s.logger.Warn("manager notification skipped: no manager on record",
			zap.String("username", row.Username),
		)
		return
	}
	mgr, err := s.ledger.Get(ctx, row.Manager)
	if err != nil || mgr.Email == "" {
		s.logger.Warn("manager notification skipped: manager unresolved",
			zap.String("username", row.Username),
			zap.String("manager", row.Manager),
			zap.Error(err),
		)
		return
	}

	mail := notify.SubmissionMail{
		Applicant:  row.Username,
		LeaveType:  app.LeaveType,
		StartDate:  app.StartDate.Format(dateLayout),
		EndDate:    app.EndDate.Format(dateLayout),
		Days:       app.Days,
		Reason:     app.Reason,
		ApproveURL: fmt.Sprintf("%s/api/approve-leave?row=%d&id=%d", s.pol.BaseURL, app.SheetRow, app.ID),
		RejectURL:  fmt.Sprintf("%s/api/reject-leave?row=%d&id=%d", s.pol.BaseURL, app.SheetRow, app.ID),
	}
	if err := s.mailer.SendSubmission(ctx, mgr.Email, mail); err != nil {
		if errors.Is(err, notify.ErrUnconfigured) {
			s.logger.Debug("manager notification skipped: mailer unconfigured")
			return
		}
		s.logger.Warn("manager notification failed",
			zap.Int("application_id", app.ID),
			zap.Error(err),
		)
	}
}

func (s *service) notifyApplicant(ctx context.Context, app *Application) {
	row, err := s.ledger.Get(ctx, app.Username)
	if err != nil || row.Email == "" {
		s.logger.Warn("applicant notification skipped: email unresolved",
			zap.String("username", app.Username),
			zap.Error(err),
		)
		return
	}
	mail := notify.DecisionMail{
		LeaveType: app.LeaveType,
		StartDate: app.StartDate.Format(dateLayout),
		EndDate:   app.EndDate.Format(dateLayout),
		Days:      app.Days,
		Status:    app.Status,
	}
	if err := s.mailer.SendDecision(ctx, row.Email, mail); err != nil {
		if errors.Is(err, notify.ErrUnconfigured) {
			s.logger.Debug("applicant notification skipped: mailer unconfigured")
			return
		}
		s.logger.Warn("applicant notification failed",
			zap.Int("application_id", app.ID),
			zap.Error(err),
		)
	}
}

func (s *service) publish(ctx context.Context, eventType string, app *Application) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:          eventType,
		ApplicationID: app.ID,
		Username:      app.Username,
		LeaveType:     app.LeaveType,
		Status:        app.Status,
		Days:          app.Days,
		StartDate:     app.StartDate.Format(dateLayout),
		EndDate:       app.EndDate.Format(dateLayout),
	})
	if err != nil {
		s.logger.Warn("event publish failed",
			zap.String("type", eventType),
			zap.Int("application_id", app.ID),
			zap.Error(err),
		)
	}
}

func mapLedgerErr(err error) error {
	if errors.Is(err, ledger.ErrUserNotFound) {
		return leaveerrors.ErrUserNotFound
	}
	return upstream(err, "failed to read leave data sheet")
}

func upstream(err error, message string) error {
	return apperror.Wrap(err, apperror.CodeInternalError, message, http.StatusInternalServerError)
}
