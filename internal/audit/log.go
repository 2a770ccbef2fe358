package audit

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// LogSink writes records as structured logx entries under the "audit" key.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Emit(ctx context.Context, rec Record) error {
	fields := []logx.LogField{
		logx.Field("request_id", rec.RequestID),
		logx.Field("outcome", rec.Outcome),
		logx.Field("method", rec.Method),
		logx.Field("path", rec.Path),
		logx.Field("status", rec.Status),
		logx.Field("latency_ms", rec.LatencyMs),
	}
	if rec.MessageID != "" {
		fields = append(fields, logx.Field("message_id", rec.MessageID))
	}
	if rec.Dup != nil {
		fields = append(fields, logx.Field("dup", *rec.Dup))
	}
	if len(rec.Fields) > 0 {
		fields = append(fields, logx.Field("fields", rec.Fields))
	}
	logx.WithContext(ctx).Infow("audit", fields...)
	return nil
}

func (s *LogSink) Close() error { return nil }
