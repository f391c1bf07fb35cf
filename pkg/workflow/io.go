package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pschleger/workflow-canvas/pkg/errors"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document to pretty-printed JSON bytes.
// The JSON shape is the exported file format: field names and nesting must
// stay stable for interoperability with previously exported files.
func MarshalDocument(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocumentTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a validated document.
// Returns an INVALID_CONFIGURATION error when the decoded document violates
// the structural invariants; imports are refused rather than repaired.
func UnmarshalDocument(data []byte) (*Document, error) {
	return readDocumentFrom(bytes.NewReader(data))
}

// WriteDocumentFile writes a document to a JSON file.
// The file is created with 0644 permissions.
func WriteDocumentFile(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDocumentTo(d, f)
}

// ReadDocumentFile reads a JSON file and returns the decoded, validated
// document.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readDocumentFrom(f)
}

// WriteDocument writes a document as JSON to an io.Writer.
func WriteDocument(d *Document, w io.Writer) error {
	return writeDocumentTo(d, w)
}

// ReadDocument decodes a JSON document from an io.Reader.
func ReadDocument(r io.Reader) (*Document, error) {
	return readDocumentFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeDocumentTo(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readDocumentFrom(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}
	if d.Configuration.States == nil {
		d.Configuration.States = map[string]StateDefinition{}
	}
	if d.Layout.States == nil {
		d.Layout.States = map[string]StateLayout{}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
