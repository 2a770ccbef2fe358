package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// HeaderName carries the hex HMAC-SHA256 of the raw request body.
const HeaderName = "X-Signature"

var ErrEmptySecret = errors.New("signature: shared secret is empty")

// Verifier authenticates raw webhook bodies against a shared secret.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct{ secret []byte }

func NewVerifier(secret string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func (v *Verifier) mac(body []byte) []byte {
	m := hmac.New(sha256.New, v.secret)
	_, _ = m.Write(body)
	return m.Sum(nil)
}

// Sign returns the lowercase hex signature of body.
func (v *Verifier) Sign(body []byte) string { return hex.EncodeToString(v.mac(body)) }

// Verify reports whether sig is the hex HMAC-SHA256 of body. Empty, malformed
// or mismatched signatures yield false; the comparison is constant time.
func (v *Verifier) Verify(body []byte, sig string) bool {
	if v == nil || len(v.secret) == 0 {
		return false
	}
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil || len(got) != sha256.Size {
		return false
	}
	return hmac.Equal(v.mac(body), got)
}
