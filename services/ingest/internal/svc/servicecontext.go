package svc

import (
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"

	"github.com/cuihairu/smshook/internal/audit"
	"github.com/cuihairu/smshook/internal/db"
	messagesgorm "github.com/cuihairu/smshook/internal/infra/persistence/gorm/messages"
	"github.com/cuihairu/smshook/internal/ports"
	"github.com/cuihairu/smshook/internal/signature"
	"github.com/cuihairu/smshook/internal/telemetry"
	"github.com/cuihairu/smshook/services/ingest/internal/config"
)

type ServiceContext struct {
	Config   config.Config
	DB       *gorm.DB
	Messages ports.MessagesRepository
	Verifier *signature.Verifier
	Audit    audit.Sink
	Metrics  *telemetry.IngestMetrics
}

// NewServiceContext opens the store, creates the messages table and builds the
// request-scoped collaborators shared by every logic.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	logx.Info("Initializing ingest service context")

	verifier, err := signature.NewVerifier(c.Webhook.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrMissingSecret, err)
	}

	gdb, err := db.Open(c.Database.DataSource, c.Database.PoolOptions())
	if err != nil {
		return nil, err
	}
	if err := messagesgorm.AutoMigrate(gdb); err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("create messages table: %w", err)
	}
	dialect, _ := db.Resolve(c.Database.DataSource)
	logx.Infof("message store ready: dialect=%s", dialect)

	metrics, err := telemetry.NewGlobalIngestMetrics()
	if err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("ingest metrics: %w", err)
	}

	return &ServiceContext{
		Config:   c,
		DB:       gdb,
		Messages: messagesgorm.NewRepo(gdb),
		Verifier: verifier,
		Audit:    audit.New(c.Audit),
		Metrics:  metrics,
	}, nil
}

func (s *ServiceContext) Close() error {
	var errs []error
	if s.Audit != nil {
		errs = append(errs, s.Audit.Close())
	}
	errs = append(errs, db.Close(s.DB))
	return errors.Join(errs...)
}
