package edgegate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// SignQueryParam is the query parameter carrying the signed token.
const SignQueryParam = "$"

// Token layout: fixed-width lowercase hex fields, concatenated with no
// separators. 8 chars of big-endian unix expiry, 64 chars of HMAC-SHA256
// digest, then zero or more 16-char (start, end) byte-range pairs.
const (
	expiryHexLen = 8
	macHexLen    = 64
	rangeHexLen  = 16
	minTokenLen  = expiryHexLen + macHexLen
)

// SignedToken is the decoded form of one signed URL token. It lives for a
// single request and is never persisted.
type SignedToken struct {
	ExpiresAt uint32
	Ranges    []ByteRange

	mac       string // digest field as received
	rangesHex string // range pairs in their original hex form
}

// ParseToken decodes a raw token string. The whole token must be lowercase
// hex, long enough for the mandatory expiry and digest fields, and carry a
// whole number of range pairs.
func ParseToken(raw string) (SignedToken, error) {
	if len(raw) < minTokenLen {
		return SignedToken{}, fmt.Errorf("token too short: %d chars, need at least %d", len(raw), minTokenLen)
	}

	if !isLowerHex(raw) {
		return SignedToken{}, fmt.Errorf("token contains non-hex characters")
	}

	rangesHex := raw[minTokenLen:]
	if len(rangesHex)%rangeHexLen != 0 {
		return SignedToken{}, fmt.Errorf("range section length %d is not a multiple of %d", len(rangesHex), rangeHexLen)
	}

	var ranges []ByteRange
	for i := 0; i < len(rangesHex); i += rangeHexLen {
		ranges = append(ranges, ByteRange{
			Start: parseHexUint32(rangesHex[i : i+expiryHexLen]),
			End:   parseHexUint32(rangesHex[i+expiryHexLen : i+rangeHexLen]),
		})
	}

	return SignedToken{
		ExpiresAt: parseHexUint32(raw[:expiryHexLen]),
		Ranges:    ranges,
		mac:       raw[expiryHexLen:minTokenLen],
		rangesHex: rangesHex,
	}, nil
}

// VerifyToken parses raw and validates it against the policy secret at the
// given time. On success it returns the signed range list, which may be
// empty. On failure the Reason names the first failed check: malformed
// tokens never reach the expiry or digest comparison.
//
// Expiry is inclusive: a token expiring exactly now is still valid. There
// is no grace window for clock skew.
func VerifyToken(raw, path, secret string, now time.Time) ([]ByteRange, Reason) {
	tok, err := ParseToken(raw)
	if err != nil {
		return nil, ReasonMalformedSignature
	}

	if int64(tok.ExpiresAt) < now.Unix() {
		return nil, ReasonExpired
	}

	expected := computeMAC(secret, path, raw[:expiryHexLen], tok.rangesHex)
	if !hmac.Equal([]byte(expected), []byte(tok.mac)) {
		return nil, ReasonBadSignature
	}

	return tok.Ranges, ""
}

// Sign builds a token authorizing path until expiresAt, optionally scoped
// to exact byte ranges. VerifyToken accepts the result with the same
// secret; the ranges round-trip in order.
func Sign(path string, expiresAt uint32, secret string, ranges []ByteRange) string {
	expiryHex := fmt.Sprintf("%08x", expiresAt)

	var rb strings.Builder
	rb.Grow(len(ranges) * rangeHexLen)
	for _, r := range ranges {
		fmt.Fprintf(&rb, "%08x%08x", r.Start, r.End)
	}
	rangesHex := rb.String()

	return expiryHex + computeMAC(secret, path, expiryHex, rangesHex) + rangesHex
}

// SignURL appends a signed token query to path.
func SignURL(path, secret string, expiresAt uint32) string {
	return path + "?" + SignQueryParam + "=" + Sign(path, expiresAt, secret, nil)
}

// ExpiryAfter returns the expiry stamp for a token valid for ttl from now.
func ExpiryAfter(now time.Time, ttl time.Duration) uint32 {
	return uint32(now.Add(ttl).Unix())
}

// computeMAC builds the verification message and returns its hex digest.
// The message is path, the expiry field, and the range pairs exactly as
// they appear in the token, newline separated after path and expiry. Range
// hex is carried verbatim rather than re-encoded so the signer and the
// verifier always agree byte for byte.
func computeMAC(secret, path, expiryHex, rangesHex string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(path))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(expiryHex))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(rangesHex))
	return hex.EncodeToString(mac.Sum(nil))
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// parseHexUint32 decodes 8 lowercase hex chars. Callers validate with
// isLowerHex first.
func parseHexUint32(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		v <<= 4
		if c <= '9' {
			v |= uint32(c - '0')
		} else {
			v |= uint32(c-'a') + 10
		}
	}
	return v
}
