package ssml

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// Kind discriminates the shapes a caller-supplied fragment can arrive in.
type Kind int

const (
	KindEmpty Kind = iota
	KindSequence
	KindRecord
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindSequence:
		return "sequence"
	case KindRecord:
		return "record"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Value is the decoded form of a section input. Sequences and records keep
// their children in Items; literals keep their text in Text.
type Value struct {
	Kind  Kind
	Items []Value
	Text  string
}

// maxDecodeDepth bounds how many times a JSON-looking string is re-parsed.
const maxDecodeDepth = 4

// recordTextFields are checked in order on object inputs; the first one that
// yields content wins.
var recordTextFields = []string{"ssml", "text", "content", "outro", "data"}

// Decode turns raw JSON for a section into a Value. It never fails: input that
// cannot be parsed is kept as a literal.
func Decode(raw json.RawMessage) Value {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Value{Kind: KindEmpty}
	}
	v, ok := unmarshalLoose(trimmed)
	if !ok {
		return Value{Kind: KindLiteral, Text: string(trimmed)}
	}
	return decodeAny(v, 0)
}

// DecodeAny decodes an already unmarshalled value (as produced by
// encoding/json into an interface{}).
func DecodeAny(v any) Value {
	return decodeAny(v, 0)
}

func decodeAny(v any, depth int) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindEmpty}
	case []any:
		items := make([]Value, 0, len(t))
		for _, el := range t {
			items = append(items, decodeAny(el, depth))
		}
		return Value{Kind: KindSequence, Items: items}
	case []string:
		items := make([]Value, 0, len(t))
		for _, el := range t {
			items = append(items, decodeString(el, depth))
		}
		return Value{Kind: KindSequence, Items: items}
	case map[string]any:
		return decodeRecord(t, depth)
	case string:
		return decodeString(t, depth)
	case json.Number:
		return Value{Kind: KindLiteral, Text: t.String()}
	default:
		s, err := cast.ToStringE(t)
		if err != nil {
			b, jerr := json.Marshal(t)
			if jerr != nil {
				return Value{Kind: KindEmpty}
			}
			s = string(b)
		}
		return Value{Kind: KindLiteral, Text: s}
	}
}

func decodeString(s string, depth int) Value {
	t := strings.TrimSpace(s)
	if depth < maxDecodeDepth && looksLikeJSON(t) {
		if parsed, ok := unmarshalLoose([]byte(t)); ok {
			return decodeAny(parsed, depth+1)
		}
	}
	return Value{Kind: KindLiteral, Text: s}
}

func decodeRecord(m map[string]any, depth int) Value {
	if chunks, ok := m["chunks"]; ok {
		if inner := decodeAny(chunks, depth); inner.Kind == KindSequence {
			return Value{Kind: KindRecord, Items: inner.Items}
		}
	}
	// The first text field with content wins. A record that only carries
	// empty text fields is an empty record, never its own JSON.
	found := false
	for _, field := range recordTextFields {
		raw, ok := m[field]
		if !ok {
			continue
		}
		found = true
		inner := decodeAny(raw, depth)
		if !inner.hasContent() {
			continue
		}
		return Value{Kind: KindRecord, Items: []Value{inner}}
	}
	if found {
		return Value{Kind: KindRecord}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return Value{Kind: KindEmpty}
	}
	return Value{Kind: KindLiteral, Text: string(b)}
}

// Strings flattens the value into its ordered plain-string fragments.
func (v Value) Strings() []string {
	switch v.Kind {
	case KindLiteral:
		return []string{v.Text}
	case KindSequence, KindRecord:
		var out []string
		for _, it := range v.Items {
			out = append(out, it.Strings()...)
		}
		return out
	default:
		return nil
	}
}

func (v Value) hasContent() bool {
	for _, s := range v.Strings() {
		if Flatten(s) != "" {
			return true
		}
	}
	return false
}

func looksLikeJSON(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '[' && last == ']') || (first == '{' && last == '}')
}

// unmarshalLoose parses exactly one JSON value, keeping numbers as json.Number.
func unmarshalLoose(b []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return v, true
}
