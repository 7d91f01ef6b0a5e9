package client

import (
	"testing"
)

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantOutcome DecodeOutcome
		wantMessage string
	}{
		{
			name:        "plain object",
			body:        `{"access_token": "abc"}`,
			wantOutcome: DecodeOK,
		},
		{
			name:        "empty object",
			body:        `{}`,
			wantOutcome: DecodeOK,
		},
		{
			name:        "array body",
			body:        `[1, 2, 3]`,
			wantOutcome: DecodeWrongShape,
		},
		{
			name:        "scalar body",
			body:        `"just a string"`,
			wantOutcome: DecodeWrongShape,
		},
		{
			name:        "null body",
			body:        `null`,
			wantOutcome: DecodeWrongShape,
		},
		{
			name:        "malformed JSON",
			body:        `{"broken":`,
			wantOutcome: DecodeWrongShape,
		},
		{
			name:        "upstream error with description",
			body:        `{"error": "invalid_grant", "error_description": "Token is not active"}`,
			wantOutcome: DecodeUpstreamError,
			wantMessage: "Token is not active",
		},
		{
			name:        "upstream error without description",
			body:        `{"error": "invalid_grant"}`,
			wantOutcome: DecodeUpstreamError,
			wantMessage: "invalid_grant",
		},
		{
			name:        "null error field is not an error",
			body:        `{"error": null, "data": {}}`,
			wantOutcome: DecodeOK,
		},
		{
			name:        "false error field is not an error",
			body:        `{"error": false}`,
			wantOutcome: DecodeOK,
		},
		{
			name:        "empty string error field is not an error",
			body:        `{"error": ""}`,
			wantOutcome: DecodeOK,
		},
		{
			name:        "non-string error field",
			body:        `{"error": {"code": 42}}`,
			wantOutcome: DecodeUpstreamError,
			wantMessage: `{"code": 42}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, outcome, msg := DecodeObject([]byte(tt.body))

			if outcome != tt.wantOutcome {
				t.Errorf("outcome = %v, want %v", outcome, tt.wantOutcome)
			}
			if msg != tt.wantMessage {
				t.Errorf("message = %q, want %q", msg, tt.wantMessage)
			}
			if tt.wantOutcome == DecodeOK && obj == nil {
				t.Error("object is nil for DecodeOK outcome")
			}
			if tt.wantOutcome == DecodeWrongShape && obj != nil {
				t.Error("object should be nil for DecodeWrongShape outcome")
			}
		})
	}
}

func TestObjectStringField(t *testing.T) {
	obj, outcome, _ := DecodeObject([]byte(`{"access_token": "abc", "count": 3, "missing_value": null}`))
	if outcome != DecodeOK {
		t.Fatalf("outcome = %v, want DecodeOK", outcome)
	}

	tests := []struct {
		name      string
		field     string
		wantValue string
		wantOK    bool
	}{
		{"present string", "access_token", "abc", true},
		{"absent field", "refresh_token", "", false},
		{"non-string field", "count", "", false},
		{"null field", "missing_value", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := obj.StringField(tt.field)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if value != tt.wantValue {
				t.Errorf("value = %q, want %q", value, tt.wantValue)
			}
		})
	}
}

func TestDecodeOutcomeString(t *testing.T) {
	tests := []struct {
		outcome DecodeOutcome
		want    string
	}{
		{DecodeOK, "ok"},
		{DecodeWrongShape, "wrong_shape"},
		{DecodeMissingField, "missing_field"},
		{DecodeUpstreamError, "upstream_error"},
		{DecodeOutcome(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
