// Package httpapi is the HTTP surface (spec §4.1): request validation,
// dispatch to the classifier/resolver/router/store components, and
// mapping of component results (or typed errors) to HTTP responses.
package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
)

// strictUnmarshal rejects unknown JSON fields at the boundary (spec §9
// design note: "Unknown fields in inputs MUST be rejected").
func strictUnmarshal(body []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func readBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
