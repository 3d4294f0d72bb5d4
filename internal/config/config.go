package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Reservation policies decide when a request debits the ledger balance:
// confirmed debits on approval, optimistic debits on submission and credits
// back on rejection or cancellation.
const (
	ReservationConfirmed  = "confirmed"
	ReservationOptimistic = "optimistic"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"3000"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	WorkbookPath     string `env:"SHEET_PATH" envDefault:"leave.xlsx"`
	LeaveDataSheet   string `env:"LEAVE_DATA_SHEET" envDefault:"Leave Data"`
	ApplicationSheet string `env:"LEAVE_APPLICATION_SHEET" envDefault:"Leave Application"`

	RedisAddr  string        `env:"REDIS_ADDR"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"leave-events"`

	ExcludeWeekends     bool   `env:"EXCLUDE_WEEKENDS" envDefault:"true"`
	AllowStatusReversal bool   `env:"ALLOW_STATUS_REVERSAL" envDefault:"false"`
	ReservationPolicy   string `env:"RESERVATION_POLICY" envDefault:"confirmed"`

	StoreRetries int `env:"STORE_RETRIES" envDefault:"2"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ReservationPolicy != ReservationConfirmed && cfg.ReservationPolicy != ReservationOptimistic {
		return nil, fmt.Errorf("invalid RESERVATION_POLICY %q", cfg.ReservationPolicy)
	}
	return cfg, nil
}

// MailConfigured reports whether the notification dispatcher has everything
// it needs. Configuration is all-or-nothing: missing pieces make every send
// return an unconfigured error rather than failing the workflow.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

func (c *Config) EventsConfigured() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}
