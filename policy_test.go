package edgegate_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate"
)

func TestSnapshotLookupLongestPrefix(t *testing.T) {
	snap, err := edgegate.NewSnapshot(1, []edgegate.PathPolicy{
		{Prefix: "/", Autoindex: true},
		{Prefix: "/restricted", Secret: "outer"},
		{Prefix: "/restricted/inner", Secret: "inner"},
	})
	require.NoError(t, err)

	tests := []struct {
		path       string
		wantPrefix string
		wantMatch  bool
	}{
		{path: "/readme.txt", wantPrefix: "/", wantMatch: true},
		{path: "/restricted/a.txt", wantPrefix: "/restricted", wantMatch: true},
		{path: "/restricted/inner/a.txt", wantPrefix: "/restricted/inner", wantMatch: true},
		{path: "/restricted", wantPrefix: "/restricted", wantMatch: true},
		{path: "/", wantPrefix: "/", wantMatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			policy, ok := snap.Lookup(tt.path)
			require.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.wantPrefix, policy.Prefix)
		})
	}
}

func TestSnapshotLookupNoMatch(t *testing.T) {
	snap, err := edgegate.NewSnapshot(1, []edgegate.PathPolicy{
		{Prefix: "/public"},
	})
	require.NoError(t, err)

	_, ok := snap.Lookup("/private/a.txt")
	assert.False(t, ok)
}

func TestNewSnapshotRejectsInvalidPrefixes(t *testing.T) {
	_, err := edgegate.NewSnapshot(1, []edgegate.PathPolicy{{Prefix: "relative/path"}})
	assert.ErrorIs(t, err, edgegate.ErrInvalidPrefix)

	_, err = edgegate.NewSnapshot(1, []edgegate.PathPolicy{{Prefix: ""}})
	assert.ErrorIs(t, err, edgegate.ErrInvalidPrefix)
}

func TestNewSnapshotRejectsDuplicates(t *testing.T) {
	_, err := edgegate.NewSnapshot(1, []edgegate.PathPolicy{
		{Prefix: "/a"},
		{Prefix: "/a"},
	})
	assert.ErrorIs(t, err, edgegate.ErrDuplicatePrefix)

	// Prefixes that collide after trailing slash normalization are
	// duplicates too.
	_, err = edgegate.NewSnapshot(1, []edgegate.PathPolicy{
		{Prefix: "/a"},
		{Prefix: "/a/"},
	})
	assert.ErrorIs(t, err, edgegate.ErrDuplicatePrefix)
}

func TestNewSnapshotNormalizesTrailingSlash(t *testing.T) {
	snap, err := edgegate.NewSnapshot(1, []edgegate.PathPolicy{
		{Prefix: "/media/", Secret: "k"},
	})
	require.NoError(t, err)

	policy, ok := snap.Lookup("/media/clip.mp4")
	require.True(t, ok)
	assert.Equal(t, "/media", policy.Prefix)

	// Root stays "/".
	snap, err = edgegate.NewSnapshot(1, []edgegate.PathPolicy{{Prefix: "/"}})
	require.NoError(t, err)
	policy, ok = snap.Lookup("/anything")
	require.True(t, ok)
	assert.Equal(t, "/", policy.Prefix)
}

func TestPathPolicySigningTTL(t *testing.T) {
	assert.Equal(t, uint32(edgegate.DefaultExpireSeconds), edgegate.PathPolicy{}.SigningTTL())
	assert.Equal(t, uint32(600), edgegate.PathPolicy{ExpireSeconds: 600}.SigningTTL())
}

func TestStoreStartsEmpty(t *testing.T) {
	store := edgegate.NewStore()

	snap := store.Current()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(0), snap.Version())

	_, ok := snap.Lookup("/anything")
	assert.False(t, ok)
}

func TestStoreSwapRejectsNil(t *testing.T) {
	store := edgegate.NewStore()
	assert.ErrorIs(t, store.Swap(nil), edgegate.ErrNilSnapshot)
}

// Concurrent readers must see each snapshot as a whole: every lookup pair
// observed during swaps is consistent with exactly one published version.
func TestStoreSwapIsAtomicUnderConcurrentReads(t *testing.T) {
	store := edgegate.NewStore()

	oldSnap, err := edgegate.NewSnapshot(1, []edgegate.PathPolicy{
		{Prefix: "/a", Secret: "old"},
		{Prefix: "/b", Secret: "old"},
	})
	require.NoError(t, err)
	newSnap, err := edgegate.NewSnapshot(2, []edgegate.PathPolicy{
		{Prefix: "/a", Secret: "new"},
		{Prefix: "/b", Secret: "new"},
	})
	require.NoError(t, err)

	require.NoError(t, store.Swap(oldSnap))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				snap := store.Current()
				a, okA := snap.Lookup("/a/x")
				b, okB := snap.Lookup("/b/x")

				assert.True(t, okA)
				assert.True(t, okB)
				assert.Equal(t, a.Secret, b.Secret, "lookup straddled a swap")
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			require.NoError(t, store.Swap(newSnap))
		} else {
			require.NoError(t, store.Swap(oldSnap))
		}
	}

	close(stop)
	wg.Wait()
}
