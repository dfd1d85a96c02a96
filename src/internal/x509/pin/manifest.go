// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509pin

import (
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	x509certs "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/chain"
)

// ErrManifestSchema indicates a JSON manifest that does not conform to the
// embedded schema.
var ErrManifestSchema = errors.New("x509pin: manifest does not match schema")

// manifestFormat represents supported manifest file formats.
type manifestFormat int

const (
	// manifestFormatJSON represents JSON manifest format (.json)
	manifestFormatJSON manifestFormat = iota
	// manifestFormatYAML represents YAML manifest format (.yaml, .yml)
	manifestFormatYAML
)

// manifestSchema is the JSON Schema that JSON manifests are validated
// against before unmarshaling. YAML manifests skip schema validation and
// rely on strict decoding.
const manifestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["chainPem", "rootPem", "pinnedPem"],
	"properties": {
		"host": {"type": "string"},
		"createdAt": {"type": "string"},
		"ignoreExpiredPinnedCert": {"type": "boolean"},
		"chainPem": {"type": "string", "minLength": 1},
		"rootPem": {"type": "string", "minLength": 1},
		"pinnedPem": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`

// Manifest is the durable form of a pin: the sorted chain plus the derived
// root and pinned certificates, stored PEM-encoded so the file is inspectable
// with standard tooling. A manifest round-trips through [Manifest.TLSOptions]
// to the same pin it was created from.
type Manifest struct {
	// Host records which endpoint the pin was taken from, if any.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// CreatedAt is when the pin was derived.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	// IgnoreExpiredPinnedCert tolerates the pinned certificate being expired.
	IgnoreExpiredPinnedCert bool `json:"ignoreExpiredPinnedCert" yaml:"ignoreExpiredPinnedCert"`
	// ChainPEM is the full sorted chain, root first.
	ChainPEM string `json:"chainPem" yaml:"chainPem"`
	// RootPEM is the trusted root, duplicated from the chain for quick reference.
	RootPEM string `json:"rootPem" yaml:"rootPem"`
	// PinnedPEM is the pinned peer certificate, duplicated from the chain.
	PinnedPEM string `json:"pinnedPem" yaml:"pinnedPem"`
}

// NewManifest sorts the certificate set, derives its pin, and returns the
// durable manifest form.
//
// Parameters:
//   - certs: Unordered certificate set (root, any intermediates, one leaf)
//   - ignoreExpiredPinned: Tolerate the pinned certificate being expired
//   - host: Optional endpoint the certificates were taken from
//
// Returns:
//   - *Manifest: Manifest ready to save
//   - error: Any chain-sorting failure
func NewManifest(certs []*x509.Certificate, ignoreExpiredPinned bool, host string) (*Manifest, error) {
	chain, err := x509chain.Sort(certs)
	if err != nil {
		return nil, err
	}

	p, err := x509chain.PinFromChain(chain)
	if err != nil {
		return nil, err
	}

	encoder := x509certs.New()
	return &Manifest{
		Host:                    host,
		CreatedAt:               time.Now().UTC(),
		IgnoreExpiredPinnedCert: ignoreExpiredPinned,
		ChainPEM:                string(encoder.EncodeMultiplePEM(chain)),
		RootPEM:                 string(encoder.EncodePEM(p.Root)),
		PinnedPEM:               string(encoder.EncodePEM(p.Pinned)),
	}, nil
}

// TLSOptions rebuilds the ready-to-use TLS configuration from the manifest.
func (m *Manifest) TLSOptions() (*TLSOptions, error) {
	return BuildTLSOptions([]byte(m.ChainPEM), m.IgnoreExpiredPinnedCert)
}

// RootSubject returns the common name of the trusted root, or an empty string
// if the stored PEM is unreadable.
func (m *Manifest) RootSubject() string { return pemCommonName(m.RootPEM) }

// PinnedSubject returns the common name of the pinned certificate, or an
// empty string if the stored PEM is unreadable.
func (m *Manifest) PinnedSubject() string { return pemCommonName(m.PinnedPEM) }

func pemCommonName(pemData string) string {
	cert, err := x509certs.New().Decode([]byte(pemData))
	if err != nil {
		return ""
	}
	return cert.Subject.CommonName
}

// detectManifestFormat determines the manifest file format based on file extension.
// It supports .json, .yaml, and .yml extensions, defaulting to JSON.
func detectManifestFormat(path string) manifestFormat {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return manifestFormatYAML
	default:
		return manifestFormatJSON
	}
}

// Save writes the manifest to path, choosing JSON or YAML by extension.
func (m *Manifest) Save(path string) error {
	var (
		data []byte
		err  error
	)

	switch detectManifestFormat(path) {
	case manifestFormatYAML:
		data, err = yaml.Marshal(m)
	default:
		data, err = json.MarshalIndent(m, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("x509pin: failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("x509pin: failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest from path, choosing JSON or YAML by
// extension. JSON documents are validated against the embedded schema before
// unmarshaling so malformed pins are rejected with a field-level message
// instead of surfacing later as a broken TLS configuration.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("x509pin: failed to read manifest: %w", err)
	}
	return ParseManifest(data, detectManifestFormat(path) == manifestFormatYAML)
}

// ParseManifest decodes manifest bytes. When isYAML is false the document is
// JSON and is schema-validated first.
func ParseManifest(data []byte, isYAML bool) (*Manifest, error) {
	var m Manifest

	if isYAML {
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("x509pin: failed to decode YAML manifest: %w", err)
		}
		return &m, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("x509pin: failed to validate manifest: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrManifestSchema, strings.Join(details, "; "))
	}

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("x509pin: failed to decode JSON manifest: %w", err)
	}
	return &m, nil
}
