package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/cuihairu/smshook/internal/audit"
	"github.com/cuihairu/smshook/internal/db"
	"github.com/cuihairu/smshook/internal/ports"
	"github.com/cuihairu/smshook/internal/signature"
	"github.com/cuihairu/smshook/services/ingest/internal/config"
	"github.com/cuihairu/smshook/services/ingest/internal/logic"
	"github.com/cuihairu/smshook/services/ingest/internal/middleware"
	"github.com/cuihairu/smshook/services/ingest/internal/svc"
)

const testSecret = "testsecret"

type captureSink struct {
	mu      sync.Mutex
	records []audit.Record
	closed  bool
}

func (c *captureSink) Emit(_ context.Context, rec audit.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

func (c *captureSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *captureSink) outcomes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r.Outcome)
	}
	return out
}

func newTestContext(t *testing.T) (*svc.ServiceContext, *captureSink) {
	t.Helper()
	var c config.Config
	c.Webhook = config.WebhookConf{Secret: testSecret, MaxBodyBytes: 1024}
	c.Database = config.DatabaseConf{DataSource: "sqlite:///:memory:"}
	svcCtx, err := svc.NewServiceContext(c)
	require.NoError(t, err)
	require.NoError(t, svcCtx.Audit.Close())
	sink := &captureSink{}
	svcCtx.Audit = sink
	t.Cleanup(func() {
		_ = svcCtx.Close()
		sink.mu.Lock()
		defer sink.mu.Unlock()
		assert.True(t, sink.closed, "service context must close its audit sink")
	})
	return svcCtx, sink
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.NewRequestIDMiddleware().Handle(h)(rec, req)
	return rec
}

func payload(id, from string, text any) []byte {
	body := map[string]any{"message_id": id, "from": from, "to": "+15550000000", "ts": "2024-01-01T00:00:00Z"}
	if text != nil {
		body["text"] = text
	}
	b, _ := json.Marshal(body)
	return b
}

func postWebhook(svcCtx *svc.ServiceContext, body []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set(signature.HeaderName, sig)
	}
	return serve(WebhookHandler(svcCtx), req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestWebhook_CreatedThenDuplicate(t *testing.T) {
	svcCtx, sink := newTestContext(t)
	body := payload("m1", "+111", "hello")

	rec := postWebhook(svcCtx, body, svcCtx.Verifier.Sign(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = postWebhook(svcCtx, body, svcCtx.Verifier.Sign(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	assert.Equal(t, []string{logic.OutcomeCreated, logic.OutcomeDuplicate}, sink.outcomes())
	first, second := sink.records[0], sink.records[1]
	assert.Equal(t, "m1", first.MessageID)
	require.NotNil(t, first.Dup)
	assert.False(t, *first.Dup)
	require.NotNil(t, second.Dup)
	assert.True(t, *second.Dup)
	assert.Equal(t, http.MethodPost, first.Method)
	assert.Equal(t, "/webhook", first.Path)
	assert.Equal(t, http.StatusOK, first.Status)
	assert.NotEmpty(t, first.RequestID)

	got, err := svcCtx.Messages.Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "+111", got.FromMSISDN)
}

func TestWebhook_ConcurrentDuplicates(t *testing.T) {
	svcCtx, sink := newTestContext(t)
	body := payload("same", "+111", nil)
	sig := svcCtx.Verifier.Sign(body)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			rec := postWebhook(svcCtx, body, sig)
			if rec.Code != http.StatusOK {
				return fmt.Errorf("status %d: %s", rec.Code, rec.Body.String())
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	created := 0
	for _, o := range sink.outcomes() {
		if o == logic.OutcomeCreated {
			created++
		}
	}
	assert.Equal(t, 1, created)
	assert.Len(t, sink.outcomes(), 16)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	svcCtx, sink := newTestContext(t)
	body := payload("m1", "+111", "hello")
	other := payload("m2", "+111", "hello")

	cases := map[string]struct {
		body []byte
		sig  string
	}{
		"missing":        {body, ""},
		"garbage":        {body, "not-hex"},
		"other body":     {body, svcCtx.Verifier.Sign(other)},
		"invalid json":   {[]byte("{nope"), "00"},
		"truncated hmac": {body, svcCtx.Verifier.Sign(body)[:10]},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postWebhook(svcCtx, tc.body, tc.sig)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"detail":"invalid signature"}`, rec.Body.String())
		})
	}

	for _, o := range sink.outcomes() {
		assert.Equal(t, logic.OutcomeInvalidSignature, o)
	}
	assert.Len(t, sink.outcomes(), len(cases))
	_, total, err := svcCtx.Messages.Query(context.Background(), ports.MessageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWebhook_ValidationError(t *testing.T) {
	svcCtx, sink := newTestContext(t)
	body := []byte(`{"message_id":"m1","from":"12345","ts":"2024-01-01T00:00:00+01:00"}`)

	rec := postWebhook(svcCtx, body, svcCtx.Verifier.Sign(body))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp struct {
		Detail []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	fields := make([]string, 0, len(resp.Detail))
	for _, d := range resp.Detail {
		fields = append(fields, d.Field)
		assert.NotEmpty(t, d.Message)
	}
	assert.Equal(t, []string{"from", "to", "ts"}, fields)

	require.Len(t, sink.records, 1)
	assert.Equal(t, logic.OutcomeValidationError, sink.records[0].Outcome)
	assert.Equal(t, []string{"from", "to", "ts"}, sink.records[0].Fields)
	assert.Nil(t, sink.records[0].Dup)

	rec = postWebhook(svcCtx, []byte("not json"), svcCtx.Verifier.Sign([]byte("not json")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"body"`)
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	svcCtx, sink := newTestContext(t)
	body := payload("m1", "+111", strings.Repeat("x", 2048))

	rec := postWebhook(svcCtx, body, svcCtx.Verifier.Sign(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, []string{logic.OutcomeBodyTooLarge}, sink.outcomes())

	// chunked bodies carry no length and are cut while reading
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.ContentLength = -1
	req.Header.Set(signature.HeaderName, svcCtx.Verifier.Sign(body))
	rec = serve(WebhookHandler(svcCtx), req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestWebhook_StoreError(t *testing.T) {
	svcCtx, sink := newTestContext(t)
	require.NoError(t, db.Close(svcCtx.DB))
	body := payload("m1", "+111", nil)

	rec := postWebhook(svcCtx, body, svcCtx.Verifier.Sign(body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, rec.Body.String())
	assert.Equal(t, []string{logic.OutcomeStoreError}, sink.outcomes())
}

func seed(t *testing.T, svcCtx *svc.ServiceContext, msgs ...*ports.Message) {
	t.Helper()
	for _, m := range msgs {
		_, err := svcCtx.Messages.Insert(context.Background(), m)
		require.NoError(t, err)
	}
}

func getJSON(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	return serve(h, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestMessagesList(t *testing.T) {
	svcCtx, _ := newTestContext(t)
	hi := "hi there"
	seed(t, svcCtx,
		&ports.Message{MessageID: "b", FromMSISDN: "+1", ToMSISDN: "+9", Ts: "2024-01-02T00:00:00Z", Text: &hi},
		&ports.Message{MessageID: "a", FromMSISDN: "+2", ToMSISDN: "+9", Ts: "2024-01-01T00:00:00Z"},
		&ports.Message{MessageID: "c", FromMSISDN: "+1", ToMSISDN: "+9", Ts: "2024-01-03T00:00:00Z"},
	)
	h := MessagesListHandler(svcCtx)

	rec := getJSON(h, "/messages")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"data": [
			{"message_id":"a","from":"+2","to":"+9","ts":"2024-01-01T00:00:00Z","text":null},
			{"message_id":"b","from":"+1","to":"+9","ts":"2024-01-02T00:00:00Z","text":"hi there"},
			{"message_id":"c","from":"+1","to":"+9","ts":"2024-01-03T00:00:00Z","text":null}
		],
		"total": 3, "limit": 50, "offset": 0
	}`, rec.Body.String())

	rec = getJSON(h, "/messages?from=%2B1&limit=1&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.EqualValues(t, 2, out["total"])
	data := out["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "c", data[0].(map[string]any)["message_id"])

	rec = getJSON(h, "/messages?q=there&since=2024-01-02T00:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = getJSON(h, "/messages?from=&q=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decode(t, rec)["total"])

	rec = getJSON(h, "/messages?offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":3,"limit":50,"offset":10}`, rec.Body.String())
}

func TestMessagesList_InvalidParams(t *testing.T) {
	svcCtx, _ := newTestContext(t)
	h := MessagesListHandler(svcCtx)
	for _, q := range []string{"limit=0", "limit=101", "offset=-1", "limit=abc"} {
		t.Run(q, func(t *testing.T) {
			rec := getJSON(h, "/messages?"+q)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"detail"`)
		})
	}
	rec := getJSON(h, "/messages?limit=100")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStats(t *testing.T) {
	svcCtx, _ := newTestContext(t)
	h := StatsHandler(svcCtx)

	rec := getJSON(h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_messages":0,"senders_count":0,"messages_per_sender":[],"first_message_ts":null,"last_message_ts":null}`, rec.Body.String())

	seed(t, svcCtx,
		&ports.Message{MessageID: "1", FromMSISDN: "+1", ToMSISDN: "+9", Ts: "2024-01-02T00:00:00Z"},
		&ports.Message{MessageID: "2", FromMSISDN: "+2", ToMSISDN: "+9", Ts: "2024-01-01T00:00:00Z"},
		&ports.Message{MessageID: "3", FromMSISDN: "+1", ToMSISDN: "+9", Ts: "2024-01-03T00:00:00Z"},
	)
	rec = getJSON(h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"total_messages": 3,
		"senders_count": 2,
		"messages_per_sender": [{"from":"+1","count":2},{"from":"+2","count":1}],
		"first_message_ts": "2024-01-01T00:00:00Z",
		"last_message_ts": "2024-01-03T00:00:00Z"
	}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	svcCtx, _ := newTestContext(t)

	rec := getJSON(HealthLiveHandler(svcCtx), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"live"}`, rec.Body.String())

	rec = getJSON(HealthReadyHandler(svcCtx), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	require.NoError(t, db.Close(svcCtx.DB))
	rec = getJSON(HealthReadyHandler(svcCtx), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not_ready","reason":"database unavailable"}`, rec.Body.String())

	rec = getJSON(HealthLiveHandler(svcCtx), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}
