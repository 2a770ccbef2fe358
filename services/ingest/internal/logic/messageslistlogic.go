package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/cuihairu/smshook/internal/ports"
	"github.com/cuihairu/smshook/services/ingest/internal/svc"
	"github.com/cuihairu/smshook/services/ingest/internal/types"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

type MessagesListLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMessagesListLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MessagesListLogic {
	return &MessagesListLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MessagesListLogic) MessagesList(req *types.MessagesListRequest) (*types.MessagesListResponse, error) {
	if req.Limit < 1 || req.Limit > MaxPageLimit {
		return nil, &ParamError{Field: "limit", Message: "must be between 1 and 100"}
	}
	if req.Offset < 0 {
		return nil, &ParamError{Field: "offset", Message: "must be greater than or equal to 0"}
	}

	rows, total, err := l.svcCtx.Messages.Query(l.ctx, ports.MessageQuery{
		Limit:        req.Limit,
		Offset:       req.Offset,
		From:         req.From,
		Since:        req.Since,
		TextContains: req.Q,
	})
	if err != nil {
		return nil, err
	}

	data := make([]types.MessageItem, 0, len(rows))
	for _, m := range rows {
		data = append(data, types.MessageItem{
			MessageId: m.MessageID,
			From:      m.FromMSISDN,
			To:        m.ToMSISDN,
			Ts:        m.Ts,
			Text:      m.Text,
		})
	}
	return &types.MessagesListResponse{
		Data:   data,
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	}, nil
}
