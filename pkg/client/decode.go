package client

import (
	"encoding/json"
)

// DecodeOutcome tags the result of decoding an object-shaped response.
// The portal reports failures in-band, so every response body must be
// shape-checked before use.
type DecodeOutcome int

const (
	// DecodeOK means the body was a JSON object without an error field.
	DecodeOK DecodeOutcome = iota

	// DecodeWrongShape means the body was not valid JSON or not an object.
	DecodeWrongShape

	// DecodeMissingField means a required field was absent from the object.
	DecodeMissingField

	// DecodeUpstreamError means the object carried an explicit error field.
	DecodeUpstreamError
)

// String returns the outcome name for logging.
func (o DecodeOutcome) String() string {
	switch o {
	case DecodeOK:
		return "ok"
	case DecodeWrongShape:
		return "wrong_shape"
	case DecodeMissingField:
		return "missing_field"
	case DecodeUpstreamError:
		return "upstream_error"
	default:
		return "unknown"
	}
}

// Object is a decoded JSON object keyed by field name.
type Object map[string]json.RawMessage

// DecodeObject decodes body as a JSON object and tags the outcome.
// The returned message accompanies DecodeUpstreamError.
func DecodeObject(body []byte) (Object, DecodeOutcome, string) {
	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, DecodeWrongShape, ""
	}

	// A literal null unmarshals into a nil map without error.
	if obj == nil {
		return nil, DecodeWrongShape, ""
	}

	if msg, ok := obj.upstreamError(); ok {
		return obj, DecodeUpstreamError, msg
	}

	return obj, DecodeOK, ""
}

// StringField extracts a string field from the object.
// Returns false when the field is absent, null, or not a string.
func (o Object) StringField(name string) (string, bool) {
	raw, ok := o[name]
	if !ok {
		return "", false
	}

	// Unmarshal leaves the target untouched on a literal null.
	if string(raw) == "null" {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Field returns the raw value of a field.
func (o Object) Field(name string) (json.RawMessage, bool) {
	raw, ok := o[name]
	return raw, ok
}

// upstreamError reports whether the object carries a non-empty error field,
// preferring error_description for the message when present.
func (o Object) upstreamError() (string, bool) {
	raw, ok := o["error"]
	if !ok {
		return "", false
	}

	switch string(raw) {
	case "null", "false", `""`:
		return "", false
	}

	if desc, ok := o.StringField("error_description"); ok && desc != "" {
		return desc, true
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg, true
	}
	return string(raw), true
}
