package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/cuihairu/smshook/services/ingest/internal/svc"
	"github.com/cuihairu/smshook/services/ingest/internal/types"
)

type StatsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStatsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StatsLogic {
	return &StatsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *StatsLogic) Stats() (*types.StatsResponse, error) {
	s, err := l.svcCtx.Messages.Stats(l.ctx)
	if err != nil {
		return nil, err
	}
	senders := make([]types.SenderCountItem, 0, len(s.MessagesPerSender))
	for _, sc := range s.MessagesPerSender {
		senders = append(senders, types.SenderCountItem{From: sc.From, Count: sc.Count})
	}
	return &types.StatsResponse{
		TotalMessages:     s.TotalMessages,
		SendersCount:      s.SendersCount,
		MessagesPerSender: senders,
		FirstMessageTs:    s.FirstTs,
		LastMessageTs:     s.LastTs,
	}, nil
}
