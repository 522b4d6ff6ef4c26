package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Encode serializes the record as one JSON object without a trailing newline.
// Decode is its exact inverse.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", d.Filename, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode rebuilds a record from one encoded line. The filename is not
// re-parsed and no external tool runs.
func Decode(line []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after record")
	}
	if doc.Filename == "" {
		return nil, fmt.Errorf("record has no filename")
	}
	return &doc, nil
}
