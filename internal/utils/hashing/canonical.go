// Package hashing computes deterministic content digests for ledger records and reports.
package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON renders v as compact JSON with object keys sorted at every level.
// Numbers are carried through as their literal text so no value is re-rounded.
func CanonicalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}
	return encode(raw)
}

// CanonicalizeDocument canonicalizes an already serialized JSON document.
func CanonicalizeDocument(doc []byte) ([]byte, error) {
	raw, err := decode(doc)
	if err != nil {
		return nil, err
	}
	return encode(raw)
}

// Digest returns the hex SHA-256 of the canonical JSON form of v.
func Digest(v any) (string, error) {
	canonical, err := CanonicalJSON(v)
	if err != nil {
		return "", fmt.Errorf("canonical json: %w", err)
	}
	return DigestBytes(canonical), nil
}

// DigestExcluding digests v with the given top-level keys removed.
// v must serialize to a JSON object.
func DigestExcluding(v any, keys ...string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return DigestDocumentExcluding(data, keys...)
}

// DigestDocumentExcluding is DigestExcluding for a serialized JSON object.
func DigestDocumentExcluding(doc []byte, keys ...string) (string, error) {
	raw, err := decode(doc)
	if err != nil {
		return "", err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return "", fmt.Errorf("expected a JSON object, got %T", raw)
	}
	for _, k := range keys {
		delete(obj, k)
	}
	canonical, err := encode(obj)
	if err != nil {
		return "", err
	}
	return DigestBytes(canonical), nil
}

// DigestBytes returns the hex SHA-256 of b.
func DigestBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return raw, nil
}

// encode relies on encoding/json sorting map keys.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode canonical: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
