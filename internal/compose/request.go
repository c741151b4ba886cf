package compose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

var ErrInvalidInput = errors.New("invalid input")

// Request is a decoded composition request. Section fields keep their raw
// JSON so the ssml decoder can apply its own coercion rules.
type Request struct {
	Intro      json.RawMessage
	Main       json.RawMessage
	MainChunks json.RawMessage
	Outro      json.RawMessage

	VoiceName     string
	LanguageCode  string
	AudioEncoding string
	SpeakingRate  *float64
	R2Prefix      string

	fields map[string]json.RawMessage
}

// ParseRequest accepts a JSON object, or a JSON string whose content is a
// JSON object. An empty body is an empty request.
func ParseRequest(body []byte) (*Request, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &Request{fields: map[string]json.RawMessage{}}, nil
	}
	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		body = bytes.TrimSpace([]byte(inner))
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return NewRequest(fields)
}

// NewRequest builds a Request from already split top-level fields.
func NewRequest(fields map[string]json.RawMessage) (*Request, error) {
	r := &Request{
		Intro:      fields["intro"],
		Main:       fields["main"],
		MainChunks: fields["mainChunks"],
		Outro:      fields["outro"],
		fields:     fields,
	}

	r.VoiceName = firstString(fields, "name", "voiceName")
	r.LanguageCode = firstString(fields, "languageCode")
	r.AudioEncoding = firstString(fields, "audioEncoding")
	r.R2Prefix = firstString(fields, "r2Prefix", "R2_PREFIX")

	if v, ok := objectField(fields, "voice"); ok {
		if s := stringOf(v["name"]); s != "" {
			r.VoiceName = s
		}
		if s := stringOf(v["languageCode"]); s != "" {
			r.LanguageCode = s
		}
	}
	if ac, ok := objectField(fields, "audioConfig"); ok {
		if s := stringOf(ac["audioEncoding"]); s != "" {
			r.AudioEncoding = s
		}
		if raw, ok := ac["speakingRate"]; ok {
			rate, err := parseRate(raw)
			if err != nil {
				return nil, err
			}
			r.SpeakingRate = rate
		}
	}
	if raw, ok := fields["speakingRate"]; ok && r.SpeakingRate == nil {
		rate, err := parseRate(raw)
		if err != nil {
			return nil, err
		}
		r.SpeakingRate = rate
	}
	return r, nil
}

// Received lists the top-level keys of the request body in sorted order.
func (r *Request) Received() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns the raw value of a top-level key.
func (r *Request) Field(key string) (json.RawMessage, bool) {
	v, ok := r.fields[key]
	return v, ok
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if s := stringOf(v); s != "" {
			return s
		}
	}
	return ""
}

func objectField(fields map[string]json.RawMessage, key string) (map[string]any, bool) {
	raw, ok := fields[key]
	if !ok {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(cast.ToString(t))
	}
}

func parseRate(v any) (*float64, error) {
	if raw, ok := v.(json.RawMessage); ok {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("%w: speakingRate: %v", ErrInvalidInput, err)
		}
		v = decoded
	}
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
	case bool:
		return nil, fmt.Errorf("%w: speakingRate must be a number, got %t", ErrInvalidInput, t)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, fmt.Errorf("%w: speakingRate: %v", ErrInvalidInput, err)
	}
	if f <= 0 {
		return nil, fmt.Errorf("%w: speakingRate must be positive", ErrInvalidInput)
	}
	return &f, nil
}
