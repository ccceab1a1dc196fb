// Package payment verifies checkout signatures issued by the payment provider.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNoSecret is returned when verification is attempted without a key secret.
var ErrNoSecret = errors.New("payment: key secret not configured")

// Verifier checks provider signatures of the form
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given key secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Configured reports whether a key secret is set.
func (v *Verifier) Configured() bool {
	return len(v.secret) > 0
}

// Sign returns the signature the provider issues for a completed payment.
func (v *Verifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches orderID and paymentID.
// The comparison is constant time; malformed hex never matches.
func (v *Verifier) Verify(orderID, paymentID, signature string) (bool, error) {
	if !v.Configured() {
		return false, ErrNoSecret
	}
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil {
		return false, nil
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hmac.Equal(got, mac.Sum(nil)), nil
}
