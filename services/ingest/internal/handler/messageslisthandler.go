package handler

import (
	"fmt"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/cuihairu/smshook/services/ingest/internal/logic"
	"github.com/cuihairu/smshook/services/ingest/internal/svc"
	"github.com/cuihairu/smshook/services/ingest/internal/types"
)

func MessagesListHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.MessagesListRequest
		if err := httpx.ParseForm(r, &req); err != nil {
			writeError(r.Context(), w, fmt.Errorf("%w: %v", logic.ErrInvalidRequest, err))
			return
		}

		l := logic.NewMessagesListLogic(r.Context(), svcCtx)
		resp, err := l.MessagesList(&req)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
