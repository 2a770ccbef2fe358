package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/cuihairu/smshook/internal/validation"
	"github.com/cuihairu/smshook/services/ingest/internal/logic"
	"github.com/cuihairu/smshook/services/ingest/internal/types"
)

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *validation.Error
	var perr *logic.ParamError
	switch {
	case errors.Is(err, logic.ErrInvalidSignature):
		httpx.WriteJsonCtx(ctx, w, http.StatusUnauthorized, types.DetailResponse{Detail: "invalid signature"})
	case errors.As(err, &verr):
		items := make([]types.FieldErrorItem, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			items = append(items, types.FieldErrorItem{Field: f.Field, Message: f.Message})
		}
		httpx.WriteJsonCtx(ctx, w, http.StatusUnprocessableEntity, types.FieldErrorsResponse{Detail: items})
	case errors.As(err, &perr):
		httpx.WriteJsonCtx(ctx, w, http.StatusUnprocessableEntity, types.FieldErrorsResponse{
			Detail: []types.FieldErrorItem{{Field: perr.Field, Message: perr.Message}},
		})
	case errors.Is(err, logic.ErrInvalidRequest):
		httpx.WriteJsonCtx(ctx, w, http.StatusUnprocessableEntity, types.DetailResponse{Detail: err.Error()})
	case errors.Is(err, logic.ErrBodyTooLarge):
		httpx.WriteJsonCtx(ctx, w, http.StatusRequestEntityTooLarge, types.DetailResponse{Detail: "request body too large"})
	default:
		logx.WithContext(ctx).Errorf("request failed: %v", err)
		httpx.WriteJsonCtx(ctx, w, http.StatusInternalServerError, types.DetailResponse{Detail: "internal server error"})
	}
}
