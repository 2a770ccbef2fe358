package handler

import (
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/cuihairu/smshook/services/ingest/internal/logic"
	"github.com/cuihairu/smshook/services/ingest/internal/svc"
)

func HealthLiveHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewHealthLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.Live())
	}
}

func HealthReadyHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewHealthLogic(r.Context(), svcCtx)
		resp, err := l.Ready()
		if errors.Is(err, logic.ErrUnavailable) {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusServiceUnavailable, resp)
			return
		}
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
