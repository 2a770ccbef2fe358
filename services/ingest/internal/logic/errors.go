package logic

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrBodyTooLarge     = errors.New("request body too large")
	ErrUnavailable      = errors.New("service unavailable")
)

// ParamError reports a query parameter outside its allowed range.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

func (e *ParamError) Unwrap() error { return ErrInvalidRequest }
