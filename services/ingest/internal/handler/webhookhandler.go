package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/cuihairu/smshook/internal/signature"
	"github.com/cuihairu/smshook/services/ingest/internal/logic"
	"github.com/cuihairu/smshook/services/ingest/internal/svc"
	"github.com/cuihairu/smshook/services/ingest/internal/types"
)

var errBodyTooLarge = errors.New("body exceeds limit")

func WebhookHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewWebhookLogic(r.Context(), svcCtx)

		raw, err := readBody(r, svcCtx.Config.Webhook.MaxBodyBytes)
		if errors.Is(err, errBodyTooLarge) {
			_, err = l.RejectOversized()
			writeError(r.Context(), w, err)
			return
		}
		if err != nil {
			writeError(r.Context(), w, fmt.Errorf("%w: read body: %v", logic.ErrInvalidRequest, err))
			return
		}

		if _, err := l.Ingest(raw, r.Header.Get(signature.HeaderName)); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, types.WebhookResponse{Status: "ok"})
	}
}

// readBody reads at most limit bytes; a longer body yields errBodyTooLarge.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	if limit > 0 && r.ContentLength > limit {
		return nil, errBodyTooLarge
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, errBodyTooLarge
	}
	return raw, nil
}
