package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate/loader"
)

func TestParseDocument(t *testing.T) {
	doc := []byte(`
version: 7
paths:
  /public:
    autoindex: true
    signature: false
  /restricted:
    signature: "sign_token"
    signature_expire_seconds: 600
  /media:
    signature: plain_string_secret
`)

	snap, err := loader.Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), snap.Version())
	assert.Equal(t, 3, snap.Len())

	public, ok := snap.Lookup("/public/readme.txt")
	require.True(t, ok)
	assert.True(t, public.Autoindex)
	assert.False(t, public.SignatureRequired())

	restricted, ok := snap.Lookup("/restricted/file.txt")
	require.True(t, ok)
	assert.True(t, restricted.SignatureRequired())
	assert.Equal(t, "sign_token", restricted.Secret)
	assert.Equal(t, uint32(600), restricted.SigningTTL())

	media, ok := snap.Lookup("/media/clip.mp4")
	require.True(t, ok)
	assert.Equal(t, "plain_string_secret", media.Secret)
}

func TestParseEmptyDocument(t *testing.T) {
	snap, err := loader.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), snap.Version())
	assert.Equal(t, 0, snap.Len())

	_, ok := snap.Lookup("/anything")
	assert.False(t, ok)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "signature true without secret",
			doc: `
paths:
  /restricted:
    signature: true
`,
		},
		{
			name: "signature is a number",
			doc: `
paths:
  /restricted:
    signature: 42
`,
		},
		{
			name: "unknown field",
			doc: `
paths:
  /restricted:
    signatrue: "typo"
`,
		},
		{
			name: "duplicate path key",
			doc: `
paths:
  /a:
    autoindex: true
  /a:
    autoindex: false
`,
		},
		{
			name: "relative prefix",
			doc: `
paths:
  relative/path:
    autoindex: true
`,
		},
		{
			name: "not yaml",
			doc:  "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseDocumentNullSignatureIsOpen(t *testing.T) {
	snap, err := loader.Parse([]byte(`
paths:
  /open:
    signature:
`))
	require.NoError(t, err)

	policy, ok := snap.Lookup("/open/file")
	require.True(t, ok)
	assert.False(t, policy.SignatureRequired())
}
