package jira

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ValueKind discriminates the shapes a remote field value can arrive in.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindOption
	KindList
)

// FieldValue is a decoded remote field. Options and text carry their label
// in Text; lists carry their decoded elements in Items.
type FieldValue struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	Items  []FieldValue
}

// DecodeFieldValue normalises a JSON-decoded field value. Option objects
// resolve to their value, display name or name in that order.
func DecodeFieldValue(raw any) FieldValue {
	switch v := raw.(type) {
	case nil:
		return FieldValue{}
	case string:
		if v == "" {
			return FieldValue{}
		}
		return FieldValue{Kind: KindText, Text: v}
	case float64:
		return FieldValue{Kind: KindNumber, Number: v}
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return FieldValue{Kind: KindText, Text: v.String()}
		}
		return FieldValue{Kind: KindNumber, Number: f}
	case int:
		return FieldValue{Kind: KindNumber, Number: float64(v)}
	case bool:
		return FieldValue{Kind: KindBool, Bool: v}
	case map[string]any:
		for _, key := range []string{"value", "displayName", "name"} {
			if label, ok := v[key].(string); ok && label != "" {
				return FieldValue{Kind: KindOption, Text: label}
			}
		}
		return FieldValue{}
	case []any:
		items := make([]FieldValue, 0, len(v))
		for _, elem := range v {
			if fv := DecodeFieldValue(elem); !fv.IsEmpty() {
				items = append(items, fv)
			}
		}
		if len(items) == 0 {
			return FieldValue{}
		}
		return FieldValue{Kind: KindList, Items: items}
	default:
		return FieldValue{Kind: KindText, Text: fmt.Sprint(v)}
	}
}

func (v FieldValue) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// String renders the value as a single scalar. Lists are joined with ", ".
func (v FieldValue) String() string {
	switch v.Kind {
	case KindText, KindOption:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindList:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Int returns the value as an integer. Text is parsed from its leading
// digits; anything else reports false.
func (v FieldValue) Int() (int, bool) {
	switch v.Kind {
	case KindNumber:
		return int(v.Number), true
	case KindText, KindOption:
		s := strings.TrimSpace(v.Text)
		end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
		if end == 0 {
			return 0, false
		}
		if end > 0 {
			s = s[:end]
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
