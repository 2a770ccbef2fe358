package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cuihairu/smshook/internal/audit"
	"github.com/cuihairu/smshook/internal/db"
)

var ErrMissingSecret = errors.New("webhook.secret is required (set WEBHOOK_SECRET)")

// ValidateDSN opens dsn and runs a trivial query.
func ValidateDSN(ctx context.Context, dsn string) error {
	gdb, err := db.Open(dsn, db.PoolOptions{})
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	var one int
	return gdb.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// AuditConf reads the audit section in the shape the service expects.
func AuditConf(v *viper.Viper) audit.Conf {
	chainFile := v.GetString("audit.chainfile")
	if chainFile == "" {
		chainFile = audit.DefaultChainFile
	}
	return audit.Conf{
		Sinks:     v.GetStringSlice("audit.sinks"),
		ChainFile: chainFile,
		Kafka: audit.KafkaConf{
			Brokers: v.GetStringSlice("audit.kafka.brokers"),
			Topic:   v.GetString("audit.kafka.topic"),
		},
		Redis: audit.RedisConf{
			URL:    v.GetString("audit.redis.url"),
			Stream: v.GetString("audit.redis.stream"),
		},
	}
}

// ValidateIngestConfig checks what the ingest service needs before serving:
// a secret, an openable database and buildable audit sinks.
func ValidateIngestConfig(v *viper.Viper) error {
	if strings.TrimSpace(v.GetString("webhook.secret")) == "" {
		return ErrMissingSecret
	}
	if v.IsSet("webhook.maxbodybytes") && v.GetInt64("webhook.maxbodybytes") <= 0 {
		return fmt.Errorf("webhook.maxbodybytes must be positive")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ValidateDSN(ctx, v.GetString("database.datasource")); err != nil {
		return fmt.Errorf("database.datasource: %w", err)
	}
	if err := AuditConf(v).Validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}
