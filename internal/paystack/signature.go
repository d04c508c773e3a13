package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// Signature computes the hex HMAC-SHA512 of body under secret, the scheme
// Paystack uses for the x-paystack-signature header.
func Signature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the HMAC of the raw
// request body. The body must be the exact bytes as received; re-serializing
// the JSON first would invalidate the hash.
//
// An empty secret or empty signature always fails: a deployment that lost its
// secret must reject everything rather than skip verification.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	want := Signature(secret, body)
	return hmac.Equal([]byte(want), []byte(signature))
}
