package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/cuihairu/smshook/services/ingest/internal/svc"
	"github.com/cuihairu/smshook/services/ingest/internal/types"
)

const readinessTimeout = 2 * time.Second

type HealthLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthLogic {
	return &HealthLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthLogic) Live() *types.HealthResponse {
	return &types.HealthResponse{Status: "live"}
}

// Ready reports whether the store answers and a secret is configured. On
// failure the response is still populated and ErrUnavailable is returned.
func (l *HealthLogic) Ready() (*types.HealthResponse, error) {
	if l.svcCtx.Verifier == nil {
		return &types.HealthResponse{Status: "not_ready", Reason: "webhook secret not configured"}, ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(l.ctx, readinessTimeout)
	defer cancel()
	if err := l.svcCtx.Messages.Ping(ctx); err != nil {
		l.Errorf("readiness: store ping failed: %v", err)
		return &types.HealthResponse{Status: "not_ready", Reason: "database unavailable"}, ErrUnavailable
	}
	return &types.HealthResponse{Status: "ready"}, nil
}
