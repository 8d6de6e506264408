package edgegate

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// DefaultExpireSeconds is the signing TTL applied when a policy does not
// set one. Matches the one hour default of centrally managed deployments.
const DefaultExpireSeconds = 3600

// PathPolicy is the access rule for one path prefix.
type PathPolicy struct {
	// Prefix is the absolute path prefix this policy covers.
	Prefix string
	// Autoindex enables directory listings under the prefix.
	Autoindex bool
	// Secret is the token signing key. Empty means open access.
	Secret string
	// ExpireSeconds is the validity window used when the gateway mints
	// signed URLs itself (autoindex pages). Zero selects the default.
	ExpireSeconds uint32
}

// SignatureRequired reports whether requests under this prefix must carry
// a valid signed token.
func (p PathPolicy) SignatureRequired() bool {
	return p.Secret != ""
}

// SigningTTL returns the validity window for URLs minted under this policy.
func (p PathPolicy) SigningTTL() uint32 {
	if p.ExpireSeconds == 0 {
		return DefaultExpireSeconds
	}
	return p.ExpireSeconds
}

// Snapshot is one immutable, fully validated policy mapping. A snapshot is
// only ever replaced as a whole; it is never mutated after construction, so
// concurrent lookups need no synchronization.
type Snapshot struct {
	version  uint64
	policies []PathPolicy // sorted by prefix length, longest first
}

// NewSnapshot validates and indexes policies for longest-prefix lookup.
// Prefixes must be absolute; trailing slashes are normalized away (the root
// prefix "/" stays as-is). Duplicate prefixes reject the whole snapshot.
func NewSnapshot(version uint64, policies []PathPolicy) (*Snapshot, error) {
	normalized := make([]PathPolicy, 0, len(policies))
	seen := make(map[string]struct{}, len(policies))

	for _, p := range policies {
		if !strings.HasPrefix(p.Prefix, "/") {
			return nil, fmt.Errorf("policy prefix %q: %w", p.Prefix, ErrInvalidPrefix)
		}

		trimmed := strings.TrimRight(p.Prefix, "/")
		if trimmed == "" {
			trimmed = "/"
		}
		p.Prefix = trimmed

		if _, ok := seen[p.Prefix]; ok {
			return nil, fmt.Errorf("policy prefix %q: %w", p.Prefix, ErrDuplicatePrefix)
		}
		seen[p.Prefix] = struct{}{}

		normalized = append(normalized, p)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return len(normalized[i].Prefix) > len(normalized[j].Prefix)
	})

	return &Snapshot{version: version, policies: normalized}, nil
}

// Version returns the document version this snapshot was built from.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Len returns the number of policies in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.policies)
}

// Lookup returns the policy with the longest registered prefix containing
// path. The second return is false when no prefix matches; callers must
// treat that as deny, not as open access.
func (s *Snapshot) Lookup(path string) (PathPolicy, bool) {
	for _, p := range s.policies {
		if strings.HasPrefix(path, p.Prefix) {
			return p, true
		}
	}
	return PathPolicy{}, false
}

// Store holds the currently visible snapshot behind a single atomic
// handle. Readers capture the handle once per authorization and never
// block; writers publish a fully built snapshot in one swap, so no reader
// can observe a partially updated mapping.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding an empty snapshot. Until a snapshot is
// published every lookup misses, which downstream treats as deny.
func NewStore() *Store {
	s := &Store{}
	empty, _ := NewSnapshot(0, nil)
	s.current.Store(empty)
	return s
}

// Swap atomically publishes snap. Authorizations that began before the
// call keep the snapshot reference they captured; authorizations that
// begin after it observe snap.
func (s *Store) Swap(snap *Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	s.current.Store(snap)
	return nil
}

// Current returns the currently visible snapshot. Callers must hold on to
// the returned reference for the duration of one authorization instead of
// calling Current repeatedly.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}
