package compose

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/yungbote/ssmlcast/internal/ssml"
)

var ErrEmptyDocument = errors.New("no content to compose")

const previewRunes = 80

var sectionKeys = []string{"intro", "main", "mainChunks", "outro"}

// FieldDiagnostic describes what arrived for one section key.
type FieldDiagnostic struct {
	Type    string `json:"type"`
	Length  int    `json:"length"`
	Preview string `json:"preview,omitempty"`
}

// EmptyDocumentError carries the context needed to debug a request whose
// sections produced nothing.
type EmptyDocumentError struct {
	Received []string                   `json:"received"`
	Fields   map[string]FieldDiagnostic `json:"fields,omitempty"`
}

func (e *EmptyDocumentError) Error() string { return ErrEmptyDocument.Error() }

// EmptyDocumentDetails is the response body form of an EmptyDocumentError.
type EmptyDocumentDetails struct {
	Received []string                   `json:"received"`
	Fields   map[string]FieldDiagnostic `json:"fields,omitempty"`
}

func (e *EmptyDocumentError) Details() EmptyDocumentDetails {
	received := e.Received
	if received == nil {
		received = []string{}
	}
	return EmptyDocumentDetails{Received: received, Fields: e.Fields}
}

func (e *EmptyDocumentError) Is(target error) bool { return target == ErrEmptyDocument }

func newEmptyDocumentError(req *Request) *EmptyDocumentError {
	e := &EmptyDocumentError{Received: req.Received()}
	for _, key := range sectionKeys {
		raw, ok := req.Field(key)
		if !ok {
			continue
		}
		if e.Fields == nil {
			e.Fields = map[string]FieldDiagnostic{}
		}
		e.Fields[key] = diagnose(raw)
	}
	return e
}

func diagnose(raw json.RawMessage) FieldDiagnostic {
	d := FieldDiagnostic{Type: TypeOf(raw)}
	var text string
	switch d.Type {
	case "string":
		_ = json.Unmarshal(raw, &text)
		d.Length = utf8.RuneCountInString(text)
	case "array":
		var items []json.RawMessage
		_ = json.Unmarshal(raw, &items)
		d.Length = len(items)
		text = ssml.CollapseWhitespace(string(raw))
	case "object":
		var m map[string]json.RawMessage
		_ = json.Unmarshal(raw, &m)
		d.Length = len(m)
		text = ssml.CollapseWhitespace(string(raw))
	default:
		text = string(raw)
		d.Length = utf8.RuneCountInString(text)
	}
	d.Preview = truncateRunes(text, previewRunes)
	return d
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
