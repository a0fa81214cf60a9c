package gateway

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"sort"
)

// macField is the field carrying the signature; it is excluded from the
// signed material.
const macField = "mac"

// ComputeMAC builds the keyed digest the legacy gateway attaches to signed
// callbacks: all non-empty fields except the MAC itself, sorted by name,
// concatenated as key=value with the shared secret appended, hashed with
// SHA-1 and hex-encoded. The scheme is fixed by the gateway; it is not an
// HMAC and cannot be changed on our side.
func ComputeMAC(fields map[string]string, secret string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == macField || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha1.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte("="))
		h.Write([]byte(fields[k]))
	}
	h.Write([]byte(secret))

	return hex.EncodeToString(h.Sum(nil))
}

// VerifyMAC checks the signature attached to a signed notification against
// the one computed from its fields.
func VerifyMAC(fields map[string]string, received, secret string) bool {
	if received == "" {
		return false
	}
	expected := ComputeMAC(fields, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}
