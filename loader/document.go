// Package loader produces validated policy snapshots from a declarative
// YAML document, read from a local file or polled from a central
// configuration server, and publishes them to the policy store. A failed
// load never disturbs the active snapshot.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/edgegate/edgegate"
)

// Document is the on-the-wire policy configuration:
//
//	version: 3
//	paths:
//	  /public:
//	    autoindex: true
//	    signature: false
//	  /restricted:
//	    signature: "sign_token"
//	    signature_expire_seconds: 600
type Document struct {
	Version uint64               `yaml:"version"`
	Paths   map[string]PathEntry `yaml:"paths"`
}

// PathEntry is the declarative form of one path policy.
type PathEntry struct {
	Autoindex              bool           `yaml:"autoindex"`
	Signature              SignatureValue `yaml:"signature"`
	SignatureExpireSeconds uint32         `yaml:"signature_expire_seconds"`
}

// SignatureValue is the closed union for the signature field: false or
// absent means open access, a string is the signing secret. true is
// rejected because requiring a signature without a secret has no meaning.
type SignatureValue struct {
	Secret string
}

// UnmarshalYAML implements the bool-or-string union with eager validation.
func (s *SignatureValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			return fmt.Errorf("line %d: signature: true requires a secret string", node.Line)
		}
		s.Secret = ""
		return nil
	case "!!str":
		return node.Decode(&s.Secret)
	case "!!null":
		s.Secret = ""
		return nil
	default:
		return fmt.Errorf("line %d: signature must be false or a secret string", node.Line)
	}
}

// Parse decodes and validates a policy document into a snapshot. Unknown
// fields, duplicate mapping keys and malformed values reject the whole
// document. An empty document yields an empty snapshot, which is legal and
// denies everything.
func Parse(data []byte) (*edgegate.Snapshot, error) {
	var doc Document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse policy document: %w", err)
	}

	policies := make([]edgegate.PathPolicy, 0, len(doc.Paths))
	for prefix, entry := range doc.Paths {
		policies = append(policies, edgegate.PathPolicy{
			Prefix:        prefix,
			Autoindex:     entry.Autoindex,
			Secret:        entry.Signature.Secret,
			ExpireSeconds: entry.SignatureExpireSeconds,
		})
	}

	snap, err := edgegate.NewSnapshot(doc.Version, policies)
	if err != nil {
		return nil, fmt.Errorf("invalid policy document: %w", err)
	}

	return snap, nil
}
