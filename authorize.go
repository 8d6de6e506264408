package edgegate

import (
	"net/url"
	"time"
)

// Reason identifies why a request was denied. The mapping from reasons to
// wire status codes belongs to the HTTP boundary, not to this package.
type Reason string

const (
	// ReasonNotFound means no registered prefix covers the request path.
	ReasonNotFound Reason = "not_found"
	// ReasonMissingSignature means the policy requires a token but the
	// request carries no signed token parameter at all.
	ReasonMissingSignature Reason = "missing_signature"
	// ReasonMalformedSignature means the token could not be decoded.
	ReasonMalformedSignature Reason = "malformed_signature"
	// ReasonExpired means the token's expiry stamp is in the past.
	ReasonExpired Reason = "expired"
	// ReasonBadSignature means the token digest did not verify.
	ReasonBadSignature Reason = "bad_signature"
	// ReasonRangeRequired means the token carries ranges but the request
	// has no Range header.
	ReasonRangeRequired Reason = "range_required"
	// ReasonRangeUnparseable means the Range header did not parse.
	ReasonRangeUnparseable Reason = "range_unparseable"
	// ReasonRangeMismatch means the Range header differs from the signed
	// range list.
	ReasonRangeMismatch Reason = "range_mismatch"
)

// Request carries the request attributes the engine inspects.
type Request struct {
	Path        string
	Query       url.Values
	RangeHeader string
}

// Decision is the outcome of one authorization.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Policy is the resolved policy; the zero value when no prefix matched.
	Policy PathPolicy
	// Ranges is the signed range list carried by a verified token. Empty
	// for open policies and for tokens signed without ranges.
	Ranges []ByteRange
}

// Engine resolves requests against the current policy snapshot. It is
// stateless apart from the store handle: concurrent calls share nothing
// mutable, and each call captures exactly one snapshot reference for all
// of its checks.
type Engine struct {
	store *Store

	// Now overrides the engine's time source. Nil means time.Now.
	Now func() time.Time
}

// NewEngine creates an engine reading policies from store.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// Authorize runs one request through policy lookup, token verification and
// range matching, in that order, and returns the first denial or an allow.
// It performs no I/O and never panics on attacker-controlled input.
func (e *Engine) Authorize(req Request) Decision {
	snap := e.store.Current()

	policy, ok := snap.Lookup(req.Path)
	if !ok {
		return Decision{Reason: ReasonNotFound}
	}

	var signed []ByteRange
	if policy.SignatureRequired() {
		raw, ok := tokenParam(req.Query)
		if !ok {
			return Decision{Reason: ReasonMissingSignature, Policy: policy}
		}

		now := time.Now()
		if e.Now != nil {
			now = e.Now()
		}

		ranges, reason := VerifyToken(raw, req.Path, policy.Secret, now)
		if reason != "" {
			return Decision{Reason: reason, Policy: policy}
		}
		signed = ranges
	}

	if reason := MatchRanges(signed, req.RangeHeader); reason != "" {
		return Decision{Reason: reason, Policy: policy}
	}

	return Decision{Allowed: true, Policy: policy, Ranges: signed}
}

// tokenParam extracts the signed token, distinguishing an absent parameter
// from a present but empty one. The latter is a malformed token and is
// left for VerifyToken to reject.
func tokenParam(query url.Values) (string, bool) {
	vals, ok := query[SignQueryParam]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
