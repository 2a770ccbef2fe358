package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"message_id": "m1",
		"from":       "+1234567",
		"to":         "+222",
		"ts":         "2024-01-01T00:00:00Z",
		"text":       "hi",
	}
}

func fieldsOf(t *testing.T, err error) []FieldError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidMessage), "expected ErrInvalidMessage, got %v", err)
	var ve *Error
	require.True(t, errors.As(err, &ve))
	return ve.Fields
}

func TestParseMessage_Valid(t *testing.T) {
	m, err := ParseMessage(validPayload())
	require.NoError(t, err)
	assert.Equal(t, "m1", m.MessageID)
	assert.Equal(t, "+1234567", m.FromMSISDN)
	assert.Equal(t, "+222", m.ToMSISDN)
	assert.Equal(t, "2024-01-01T00:00:00Z", m.Ts)
	require.NotNil(t, m.Text)
	assert.Equal(t, "hi", *m.Text)
}

func TestParseMessage_TextAbsentVsEmpty(t *testing.T) {
	p := validPayload()
	delete(p, "text")
	m, err := ParseMessage(p)
	require.NoError(t, err)
	assert.Nil(t, m.Text)

	p["text"] = nil
	m, err = ParseMessage(p)
	require.NoError(t, err)
	assert.Nil(t, m.Text)

	p["text"] = ""
	m, err = ParseMessage(p)
	require.NoError(t, err)
	require.NotNil(t, m.Text)
	assert.Equal(t, "", *m.Text)
}

func TestParseMessage_InternalNamesAccepted(t *testing.T) {
	p := validPayload()
	delete(p, "from")
	delete(p, "to")
	p["from_msisdn"] = "+9"
	p["to_msisdn"] = "+8"
	m, err := ParseMessage(p)
	require.NoError(t, err)
	assert.Equal(t, "+9", m.FromMSISDN)
	assert.Equal(t, "+8", m.ToMSISDN)
}

func TestParseMessage_AliasWins(t *testing.T) {
	p := validPayload()
	p["from_msisdn"] = "not-a-number"
	m, err := ParseMessage(p)
	require.NoError(t, err)
	assert.Equal(t, "+1234567", m.FromMSISDN)
}

func TestParseMessage_MSISDN(t *testing.T) {
	for _, bad := range []string{"1234567", "+", "+12a3", "+1 234", " +123", "+123 ", "++1", "", "+١٢٣"} {
		p := validPayload()
		p["from"] = bad
		fields := fieldsOf(t, func() error { _, err := ParseMessage(p); return err }())
		require.Len(t, fields, 1, "value %q", bad)
		assert.Equal(t, "from", fields[0].Field)
	}
	p := validPayload()
	p["to"] = "222"
	fields := fieldsOf(t, func() error { _, err := ParseMessage(p); return err }())
	require.Len(t, fields, 1)
	assert.Equal(t, FieldError{Field: "to", Message: "invalid msisdn format"}, fields[0])
}

func TestParseMessage_Timestamp(t *testing.T) {
	p := validPayload()
	p["ts"] = "2024-01-01T00:00:00"
	fields := fieldsOf(t, func() error { _, err := ParseMessage(p); return err }())
	assert.Equal(t, []FieldError{{Field: "ts", Message: "timestamp must be UTC with Z suffix"}}, fields)

	p["ts"] = "2024-01-01T00:00:00+00:00"
	_, err := ParseMessage(p)
	require.ErrorIs(t, err, ErrInvalidMessage)

	// only the suffix is checked
	p["ts"] = "whenever Z"
	_, err = ParseMessage(p)
	require.NoError(t, err)
}

func TestParseMessage_MessageID(t *testing.T) {
	p := validPayload()
	p["message_id"] = ""
	fields := fieldsOf(t, func() error { _, err := ParseMessage(p); return err }())
	assert.Equal(t, []FieldError{{Field: "message_id", Message: "must not be empty"}}, fields)

	p["message_id"] = 42.0
	fields = fieldsOf(t, func() error { _, err := ParseMessage(p); return err }())
	require.Len(t, fields, 1)
	assert.Equal(t, "message_id", fields[0].Field)
}

func TestParseMessage_TextLength(t *testing.T) {
	p := validPayload()
	p["text"] = strings.Repeat("a", MaxTextLength)
	_, err := ParseMessage(p)
	require.NoError(t, err)

	// characters, not bytes
	p["text"] = strings.Repeat("é", MaxTextLength)
	_, err = ParseMessage(p)
	require.NoError(t, err)

	p["text"] = strings.Repeat("a", MaxTextLength+1)
	fields := fieldsOf(t, func() error { _, err := ParseMessage(p); return err }())
	assert.Equal(t, []FieldError{{Field: "text", Message: "must be at most 4096 characters"}}, fields)
}

func TestParseMessage_MissingFieldsSorted(t *testing.T) {
	fields := fieldsOf(t, func() error { _, err := ParseMessage(map[string]any{}); return err }())
	got := make([]string, 0, len(fields))
	for _, f := range fields {
		got = append(got, f.Field)
		assert.Equal(t, "field required", f.Message)
	}
	assert.Equal(t, []string{"from", "message_id", "to", "ts"}, got)
}

func TestParseMessage_NotAnObject(t *testing.T) {
	for _, p := range []any{nil, "x", 1.0, []any{}} {
		fields := fieldsOf(t, func() error { _, err := ParseMessage(p); return err }())
		assert.Equal(t, "body", fields[0].Field)
	}
}

func TestParseMessageJSON(t *testing.T) {
	m, err := ParseMessageJSON([]byte(`{"message_id":"m1","from":"+111","to":"+222","ts":"2024-01-01T00:00:00Z","extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, "+111", m.FromMSISDN)

	fields := fieldsOf(t, func() error { _, err := ParseMessageJSON([]byte(`{"message_id":`)); return err }())
	assert.Equal(t, []FieldError{{Field: "body", Message: "body is not valid JSON"}}, fields)
}

func TestError_Message(t *testing.T) {
	err := newError(FieldError{Field: "ts", Message: "b"}, FieldError{Field: "from", Message: "a"})
	assert.Equal(t, "invalid message: from: a; ts: b", err.Error())
}
