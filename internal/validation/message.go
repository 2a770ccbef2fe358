package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/cuihairu/smshook/internal/ports"
)

// MaxTextLength is the upper bound on message text, in characters.
const MaxTextLength = 4096

var ErrInvalidMessage = errors.New("invalid message")

// messageSchema describes the normalised payload (aliases already resolved).
const messageSchema = `{
  "type": "object",
  "required": ["message_id", "from_msisdn", "to_msisdn", "ts"],
  "properties": {
    "message_id":  {"type": "string", "minLength": 1},
    "from_msisdn": {"type": "string", "pattern": "^\\+[0-9]+$"},
    "to_msisdn":   {"type": "string", "pattern": "^\\+[0-9]+$"},
    "ts":          {"type": "string", "pattern": "Z$"},
    "text":        {"type": ["string", "null"], "maxLength": 4096}
  }
}`

var compiledSchema = mustSchema(messageSchema)

func mustSchema(s string) *gojsonschema.Schema {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("validation: bad message schema: %v", err))
	}
	return sch
}

// wire aliases accepted on input; the alias wins over the internal name.
var aliases = map[string]string{
	"from": "from_msisdn",
	"to":   "to_msisdn",
}

// wireNames maps internal field names back to what callers send.
var wireNames = map[string]string{
	"from_msisdn": "from",
	"to_msisdn":   "to",
}

// FieldError names one violated constraint using the wire field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned for any payload that fails validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid message: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool { return target == ErrInvalidMessage }

func newError(fields ...FieldError) *Error {
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Field != fields[j].Field {
			return fields[i].Field < fields[j].Field
		}
		return fields[i].Message < fields[j].Message
	})
	return &Error{Fields: fields}
}

// ParseMessageJSON decodes raw and validates it as a message payload.
func ParseMessageJSON(raw []byte) (*ports.Message, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, newError(FieldError{Field: "body", Message: "body is not valid JSON"})
	}
	return ParseMessage(payload)
}

// ParseMessage validates an already decoded payload and returns the domain
// record. The returned error is an *Error for every validation failure.
func ParseMessage(payload any) (*ports.Message, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, newError(FieldError{Field: "body", Message: "payload must be a JSON object"})
	}
	doc := normalise(obj)

	res, err := compiledSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, newError(FieldError{Field: "body", Message: err.Error()})
	}
	if !res.Valid() {
		fields := make([]FieldError, 0, len(res.Errors()))
		for _, re := range res.Errors() {
			fields = append(fields, toFieldError(re))
		}
		return nil, newError(fields...)
	}

	m := &ports.Message{
		MessageID:  doc["message_id"].(string),
		FromMSISDN: doc["from_msisdn"].(string),
		ToMSISDN:   doc["to_msisdn"].(string),
		Ts:         doc["ts"].(string),
	}
	if s, ok := doc["text"].(string); ok {
		m.Text = &s
	}
	return m, nil
}

// normalise copies the known fields, resolving aliases.
func normalise(obj map[string]any) map[string]any {
	doc := make(map[string]any, 5)
	for _, k := range []string{"message_id", "from_msisdn", "to_msisdn", "ts", "text"} {
		if v, ok := obj[k]; ok {
			doc[k] = v
		}
	}
	for alias, name := range aliases {
		if v, ok := obj[alias]; ok {
			doc[name] = v
		}
	}
	return doc
}

func toFieldError(re gojsonschema.ResultError) FieldError {
	field := re.Field()
	if re.Type() == "required" {
		if p, ok := re.Details()["property"].(string); ok {
			field = p
		}
	}
	if w, ok := wireNames[field]; ok {
		field = w
	}
	return FieldError{Field: field, Message: describe(re, field)}
}

func describe(re gojsonschema.ResultError, field string) string {
	switch re.Type() {
	case "required":
		return "field required"
	case "pattern":
		if field == "ts" {
			return "timestamp must be UTC with Z suffix"
		}
		return "invalid msisdn format"
	case "string_gte":
		return "must not be empty"
	case "string_lte":
		return fmt.Sprintf("must be at most %d characters", MaxTextLength)
	default:
		return re.Description()
	}
}
