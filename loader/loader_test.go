package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate"
	"github.com/edgegate/edgegate/loader"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writePolicyFile(t, `
version: 3
paths:
  /restricted:
    signature: "k"
`)

	store := edgegate.NewStore()
	require.NoError(t, loader.LoadFile(path, store))

	snap := store.Current()
	assert.Equal(t, uint64(3), snap.Version())

	policy, ok := snap.Lookup("/restricted/a")
	require.True(t, ok)
	assert.Equal(t, "k", policy.Secret)
}

func TestLoadFileKeepsSnapshotOnError(t *testing.T) {
	good := writePolicyFile(t, `
version: 1
paths:
  /a:
    autoindex: true
`)

	store := edgegate.NewStore()
	require.NoError(t, loader.LoadFile(good, store))

	bad := writePolicyFile(t, `
paths:
  /a:
    signature: true
`)
	assert.Error(t, loader.LoadFile(bad, store))

	// The good snapshot survives the failed reload.
	snap := store.Current()
	assert.Equal(t, uint64(1), snap.Version())
	_, ok := snap.Lookup("/a/x")
	assert.True(t, ok)
}

func TestLoadFileMissing(t *testing.T) {
	store := edgegate.NewStore()
	assert.Error(t, loader.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), store))
}
