package logic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuihairu/smshook/internal/audit"
	"github.com/cuihairu/smshook/internal/ports"
	"github.com/cuihairu/smshook/internal/telemetry"
	"github.com/cuihairu/smshook/internal/validation"
	"github.com/cuihairu/smshook/services/ingest/internal/middleware"
	"github.com/cuihairu/smshook/services/ingest/internal/svc"
)

const (
	OutcomeCreated          = "created"
	OutcomeDuplicate        = "duplicate"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeValidationError  = "validation_error"
	OutcomeStoreError       = "store_error"
	OutcomeBodyTooLarge     = "body_too_large"
)

// IngestResult is the uniform outcome of one webhook request.
type IngestResult struct {
	Outcome   string
	Status    int
	MessageID string
	Fields    []validation.FieldError
}

type WebhookLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
	start  time.Time
}

func NewWebhookLogic(ctx context.Context, svcCtx *svc.ServiceContext) *WebhookLogic {
	return &WebhookLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
		start:  time.Now(),
	}
}

// Ingest verifies the raw body against its signature, validates it and stores
// the message. Exactly one audit record and one metric observation are
// emitted whatever the outcome. The returned result is never nil.
func (l *WebhookLogic) Ingest(raw []byte, signature string) (*IngestResult, error) {
	ctx, span := telemetry.Tracer().Start(l.ctx, "webhook.ingest", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	res, err := l.ingest(ctx, raw, signature)
	l.finish(ctx, span, res, err)
	return res, err
}

// RejectOversized records a request whose body exceeded the configured limit.
func (l *WebhookLogic) RejectOversized() (*IngestResult, error) {
	res := &IngestResult{Outcome: OutcomeBodyTooLarge, Status: http.StatusRequestEntityTooLarge}
	l.finish(l.ctx, nil, res, ErrBodyTooLarge)
	return res, ErrBodyTooLarge
}

func (l *WebhookLogic) ingest(ctx context.Context, raw []byte, signature string) (*IngestResult, error) {
	if !l.svcCtx.Verifier.Verify(raw, signature) {
		return &IngestResult{Outcome: OutcomeInvalidSignature, Status: http.StatusUnauthorized}, ErrInvalidSignature
	}

	msg, err := validation.ParseMessageJSON(raw)
	if err != nil {
		res := &IngestResult{Outcome: OutcomeValidationError, Status: http.StatusUnprocessableEntity}
		var verr *validation.Error
		if errors.As(err, &verr) {
			res.Fields = verr.Fields
		}
		return res, err
	}

	inserted, err := l.svcCtx.Messages.Insert(ctx, msg)
	if err != nil {
		return &IngestResult{Outcome: OutcomeStoreError, Status: http.StatusInternalServerError, MessageID: msg.MessageID},
			fmt.Errorf("store message: %w", err)
	}
	res := &IngestResult{Outcome: OutcomeCreated, Status: http.StatusOK, MessageID: msg.MessageID}
	if inserted == ports.Duplicate {
		res.Outcome = OutcomeDuplicate
	}
	return res, nil
}

func (l *WebhookLogic) finish(ctx context.Context, span trace.Span, res *IngestResult, err error) {
	elapsed := time.Since(l.start)
	info := middleware.RequestInfoFrom(ctx)

	rec := audit.Record{
		Time:      time.Now().UTC(),
		RequestID: info.ID,
		Outcome:   res.Outcome,
		Method:    info.Method,
		Path:      info.Path,
		Status:    res.Status,
		LatencyMs: float64(elapsed.Microseconds()) / 1000,
		MessageID: res.MessageID,
	}
	switch res.Outcome {
	case OutcomeCreated, OutcomeDuplicate:
		dup := res.Outcome == OutcomeDuplicate
		rec.Dup = &dup
	case OutcomeValidationError:
		for _, f := range res.Fields {
			rec.Fields = append(rec.Fields, f.Field)
		}
	}
	if l.svcCtx.Audit != nil {
		if aerr := l.svcCtx.Audit.Emit(ctx, rec); aerr != nil {
			l.Errorf("audit emit failed: %v", aerr)
		}
	}
	l.svcCtx.Metrics.Observe(ctx, res.Outcome, elapsed)

	if res.Outcome == OutcomeStoreError {
		l.Errorf("webhook %s: %v", res.MessageID, err)
	}
	if span != nil {
		span.SetAttributes(attribute.String("smshook.outcome", res.Outcome))
		if res.Outcome == OutcomeStoreError {
			span.RecordError(err)
			span.SetStatus(codes.Error, res.Outcome)
		}
	}
}
