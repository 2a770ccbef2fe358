package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/rest"

	"github.com/cuihairu/smshook/internal/audit"
	"github.com/cuihairu/smshook/internal/db"
	"github.com/cuihairu/smshook/internal/telemetry"
)

var ErrMissingSecret = errors.New("webhook secret is required (set WEBHOOK_SECRET)")

type Config struct {
	rest.RestConf
	Webhook  WebhookConf
	Database DatabaseConf
	Audit    audit.Conf
	Otel     telemetry.Config
}

type WebhookConf struct {
	Secret string `json:",optional"`
	// MaxBodyBytes must not exceed RestConf.MaxBytes, which is enforced first.
	MaxBodyBytes int64 `json:",default=262144"`
}

type DatabaseConf struct {
	DataSource      string        `json:",default=sqlite:///./app.db"`
	MaxOpenConns    int           `json:",default=10"`
	MaxIdleConns    int           `json:",default=5"`
	ConnMaxLifetime time.Duration `json:",default=30m"`
}

func (d DatabaseConf) PoolOptions() db.PoolOptions {
	return db.PoolOptions{
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

// Validate fails fast on settings the service cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Webhook.Secret) == "" {
		return ErrMissingSecret
	}
	if c.Webhook.MaxBodyBytes <= 0 {
		return fmt.Errorf("Webhook.MaxBodyBytes must be positive, got %d", c.Webhook.MaxBodyBytes)
	}
	if err := c.Audit.Validate(); err != nil {
		return err
	}
	return nil
}

// ApplyLogLevel maps conventional level names (INFO, WARNING, ...) onto logx
// levels. Empty input keeps the configured level.
func (c *Config) ApplyLogLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return nil
	case "debug":
		c.Log.Level = "debug"
	case "info":
		c.Log.Level = "info"
	case "warn", "warning", "error":
		c.Log.Level = "error"
	case "critical", "fatal", "severe":
		c.Log.Level = "severe"
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
