package jira

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("invalid fixture %s: %v", s, err)
	}
	return v
}

func TestDecodeFieldValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind ValueKind
		want     string
	}{
		{"null", `null`, KindEmpty, ""},
		{"empty string", `""`, KindEmpty, ""},
		{"bare string", `"KR"`, KindText, "KR"},
		{"integer number", `12`, KindNumber, "12"},
		{"fractional number", `1.5`, KindNumber, "1.5"},
		{"bool", `true`, KindBool, "true"},
		{"select option", `{"self":"x","value":"High","id":"1"}`, KindOption, "High"},
		{"user object", `{"displayName":"Kim Analyst","name":"kim"}`, KindOption, "Kim Analyst"},
		{"named object", `{"name":"Firewall"}`, KindOption, "Firewall"},
		{"object without label", `{"id":"10"}`, KindEmpty, ""},
		{"array of options", `[{"value":"SQLi"},{"name":"XSS"}]`, KindList, "SQLi, XSS"},
		{"array of strings", `["a","","b"]`, KindList, "a, b"},
		{"empty array", `[]`, KindEmpty, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeFieldValue(decodeJSON(t, tt.raw))
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFieldValue_Int(t *testing.T) {
	tests := []struct {
		name   string
		value  FieldValue
		want   int
		wantOK bool
	}{
		{"number", FieldValue{Kind: KindNumber, Number: 7}, 7, true},
		{"numeric text", FieldValue{Kind: KindText, Text: " 42 "}, 42, true},
		{"leading digits", FieldValue{Kind: KindText, Text: "12 events"}, 12, true},
		{"not a number", FieldValue{Kind: KindText, Text: "many"}, 0, false},
		{"empty", FieldValue{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Int()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
