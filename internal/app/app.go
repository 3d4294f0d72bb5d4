package app

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Waihonggg/leave-app-system/internal/auth"
	"github.com/Waihonggg/leave-app-system/internal/config"
	"github.com/Waihonggg/leave-app-system/internal/events"
	"github.com/Waihonggg/leave-app-system/internal/ledger"
	"github.com/Waihonggg/leave-app-system/internal/leave"
	"github.com/Waihonggg/leave-app-system/internal/middleware"
	"github.com/Waihonggg/leave-app-system/internal/notify"
	"github.com/Waihonggg/leave-app-system/internal/sheet"
	"github.com/Waihonggg/leave-app-system/internal/shared/connection"
)

// BuildApp wires store, repositories, services and routes onto the router.
// The returned cleanup closes the event writer and the redis connection on
// shutdown.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	store := sheet.NewExcelStore(cfg.WorkbookPath, cfg.StoreRetries, logger)
	ledgerRepo := ledger.NewRepository(store, cfg.LeaveDataSheet, logger)
	leaveRepo := leave.NewRepository(store, cfg.ApplicationSheet)

	var rdb *redis.Client
	var sessions auth.SessionStore
	if cfg.RedisAddr != "" {
		client, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
		if err != nil {
			return nil, err
		}
		rdb = client
		sessions = auth.NewRedisSessionStore(rdb, cfg.SessionTTL)
	} else {
		logger.Info("REDIS_ADDR unset, using in-memory sessions")
		sessions = auth.NewMemorySessionStore(cfg.SessionTTL)
	}

	mailer := notify.NewSMTPMailer(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.MailFrom,
		logger,
	)
	if !cfg.MailConfigured() {
		logger.Warn("mail transport unconfigured, notifications will be skipped")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventsConfigured() {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	}

	leaveSvc := leave.NewService(leaveRepo, ledgerRepo, mailer, publisher, leave.Policies{
		ExcludeWeekends:     cfg.ExcludeWeekends,
		AllowStatusReversal: cfg.AllowStatusReversal,
		ReservationPolicy:   cfg.ReservationPolicy,
		BaseURL:             cfg.BaseURL,
	}, logger)
	authSvc := auth.NewService(ledgerRepo, sessions, logger)

	router.Use(middleware.RequestID())

	api := router.Group("/api")
	api.Use(middleware.RateLimitByIP(10, 20))

	auth.RegisterRoutes(api, auth.NewHandler(authSvc, int(cfg.SessionTTL.Seconds()), logger))
	leave.RegisterRoutes(api, leave.NewHandler(leaveSvc, logger), sessions, rdb)

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("event publisher close failed", zap.Error(err))
		}
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				logger.Warn("redis close failed", zap.Error(err))
			}
		}
	}
	return cleanup, nil
}
