package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	autherrors "github.com/Waihonggg/leave-app-system/internal/auth/errors"
	"github.com/Waihonggg/leave-app-system/internal/ledger"
)

type Service interface {
	Login(ctx context.Context, username, password string) (Session, error)
	Logout(ctx context.Context, token string) error
}

type service struct {
	ledger   ledger.Repository
	sessions SessionStore
	logger   *zap.Logger
}

func NewService(ledgerRepo ledger.Repository, sessions SessionStore, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{ledger: ledgerRepo, sessions: sessions, logger: l}
}

func (s *service) Login(ctx context.Context, username, password string) (Session, error) {
	row, err := s.ledger.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			return Session{}, autherrors.ErrInvalidCredentials
		}
		s.logger.Error("login ledger lookup failed", zap.Error(err))
		return Session{}, err
	}

	// Credentials in the sheet are opaque strings compared verbatim.
	if row.Password != password {
		s.logger.Warn("login rejected", zap.String("username", row.Username))
		return Session{}, autherrors.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, row.Username, row.SheetRow)
	if err != nil {
		s.logger.Error("session create failed", zap.Error(err))
		return Session{}, err
	}
	s.logger.Info("login success", zap.String("username", row.Username))
	return sess, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
