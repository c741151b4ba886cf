package compose

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/ssmlcast/internal/ssml"
)

const pause = `<break time="700ms"/>`

func mustParse(t *testing.T, body string) *Request {
	t.Helper()
	req, err := ParseRequest([]byte(body))
	if err != nil {
		t.Fatalf("ParseRequest(%s): %v", body, err)
	}
	return req
}

func newTestComposer() *Composer {
	return NewComposer(ssml.DefaultOptions(), DefaultDefaults())
}

func TestComposeFullRequest(t *testing.T) {
	req := mustParse(t, `{"intro":"Hello","main":["Story A","Story B"],"outro":"Bye"}`)
	resp, err := newTestComposer().Compose(req)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	wantSSML := "<speak>Hello " + pause + " Story A " + pause + " Story B " + pause + " Bye</speak>"
	if resp.Transcript.SSML != wantSSML {
		t.Fatalf("ssml=%q want=%q", resp.Transcript.SSML, wantSSML)
	}
	if resp.Transcript.Plain != "Hello Story A Story B Bye" {
		t.Fatalf("plain=%q", resp.Transcript.Plain)
	}
	if resp.TTSMaker.Body.Text != wantSSML {
		t.Fatalf("tts text=%q", resp.TTSMaker.Body.Text)
	}
}

func TestComposeResponseShape(t *testing.T) {
	req := mustParse(t, `{"main":"<speak>Only this</speak>"}`)
	resp, err := newTestComposer().Compose(req)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"transcript": map[string]any{"plain": "Only this", "ssml": "<speak>Only this</speak>"},
		"tts_maker": map[string]any{
			"endpoint": "/tts/chunked",
			"body": map[string]any{
				"text":        "<speak>Only this</speak>",
				"voice":       map[string]any{"languageCode": "en-GB", "name": "en-GB-Wavenet-B"},
				"audioConfig": map[string]any{"audioEncoding": "MP3", "speakingRate": 1.0},
				"R2_PREFIX":   "podcast",
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("response=%s", b)
	}
}

func TestComposeMainChunksWinOverMain(t *testing.T) {
	req := mustParse(t, `{"main":"ignored","mainChunks":["<speak>A</speak>","<speak>B</speak>"]}`)
	resp, err := newTestComposer().Compose(req)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if want := "<speak>A " + pause + " B</speak>"; resp.Transcript.SSML != want {
		t.Fatalf("ssml=%q want=%q", resp.Transcript.SSML, want)
	}
}

func TestComposeEmptyMainChunksFallBackToMain(t *testing.T) {
	req := mustParse(t, `{"main":"fallback","mainChunks":[]}`)
	resp, err := newTestComposer().Compose(req)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if resp.Transcript.SSML != "<speak>fallback</speak>" {
		t.Fatalf("ssml=%q", resp.Transcript.SSML)
	}
}

func TestComposeJSONStringMain(t *testing.T) {
	cases := map[string]string{
		`{"main":"[\"x\",\"y\"]"}`: "<speak>x " + pause + " y</speak>",
		`{"main":"[\"x\",\"y\""}`:  `<speak>["x","y"</speak>`,
	}
	for body, want := range cases {
		resp, err := newTestComposer().Compose(mustParse(t, body))
		if err != nil {
			t.Fatalf("Compose(%s): %v", body, err)
		}
		if resp.Transcript.SSML != want {
			t.Fatalf("body=%s ssml=%q want=%q", body, resp.Transcript.SSML, want)
		}
	}
}

func TestComposeEmptyDocument(t *testing.T) {
	req := mustParse(t, `{"intro":"","main":["  ","\n"],"voiceName":"x"}`)
	_, err := newTestComposer().Compose(req)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	var ede *EmptyDocumentError
	if !errors.As(err, &ede) {
		t.Fatalf("expected *EmptyDocumentError, got %T", err)
	}
	if want := []string{"intro", "main", "voiceName"}; !reflect.DeepEqual(ede.Received, want) {
		t.Fatalf("received=%v want=%v", ede.Received, want)
	}
	main, ok := ede.Fields["main"]
	if !ok || main.Type != "array" || main.Length != 2 {
		t.Fatalf("main diagnostic=%+v", main)
	}
	if _, ok := ede.Fields["outro"]; ok {
		t.Fatalf("absent field should not be diagnosed")
	}
}

func TestComposeEmptyRecordFields(t *testing.T) {
	req := mustParse(t, `{"intro":{"ssml":""},"outro":{"text":"  "}}`)
	_, err := newTestComposer().Compose(req)
	var ede *EmptyDocumentError
	if !errors.As(err, &ede) {
		t.Fatalf("expected *EmptyDocumentError, got %v", err)
	}
	details := ede.Details()
	if !reflect.DeepEqual(details.Received, []string{"intro", "outro"}) {
		t.Fatalf("received=%v", details.Received)
	}
	if details.Fields["intro"].Type != "object" {
		t.Fatalf("fields=%+v", details.Fields)
	}
	b, err := json.Marshal(details)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["received"].([]any); !ok {
		t.Fatalf("details json=%s", b)
	}
}

func TestComposeNoBody(t *testing.T) {
	_, err := newTestComposer().Compose(mustParse(t, ``))
	var ede *EmptyDocumentError
	if !errors.As(err, &ede) {
		t.Fatalf("expected *EmptyDocumentError, got %v", err)
	}
	if len(ede.Received) != 0 {
		t.Fatalf("received=%v", ede.Received)
	}
}

func TestVoiceFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		want TTSBody
	}{
		{
			name: "name beats voiceName",
			body: `{"main":"m","name":"en-US-A","voiceName":"en-US-B","languageCode":"en-US","audioEncoding":"OGG_OPUS","speakingRate":"1.25","r2Prefix":"shows"}`,
			want: TTSBody{Voice: Voice{LanguageCode: "en-US", Name: "en-US-A"}, AudioConfig: AudioConfig{AudioEncoding: "OGG_OPUS", SpeakingRate: 1.25}, R2Prefix: "shows"},
		},
		{
			name: "voiceName and upper prefix",
			body: `{"main":"m","voiceName":"en-GB-News-K","R2_PREFIX":"daily"}`,
			want: TTSBody{Voice: Voice{LanguageCode: "en-GB", Name: "en-GB-News-K"}, AudioConfig: AudioConfig{AudioEncoding: "MP3", SpeakingRate: 1}, R2Prefix: "daily"},
		},
		{
			name: "nested objects",
			body: `{"main":"m","voice":{"name":"v","languageCode":"fr-FR"},"audioConfig":{"audioEncoding":"LINEAR16","speakingRate":0.9}}`,
			want: TTSBody{Voice: Voice{LanguageCode: "fr-FR", Name: "v"}, AudioConfig: AudioConfig{AudioEncoding: "LINEAR16", SpeakingRate: 0.9}, R2Prefix: "podcast"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newTestComposer().Compose(mustParse(t, tc.body))
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			got := resp.TTSMaker.Body
			got.Text = ""
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("body=%+v want=%+v", got, tc.want)
			}
		})
	}
}

func TestParseRequestStringBody(t *testing.T) {
	req := mustParse(t, `"{\"main\":\"from string\"}"`)
	resp, err := newTestComposer().Compose(req)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if resp.Transcript.SSML != "<speak>from string</speak>" {
		t.Fatalf("ssml=%q", resp.Transcript.SSML)
	}
}

func TestParseRequestInvalid(t *testing.T) {
	for _, body := range []string{`{"main":`, `[1,2]`, `"not an object"`, `{"main":"m","speakingRate":"fast"}`,
		`{"main":"m","speakingRate":true}`,
		`{"main":"m","audioConfig":{"speakingRate":false}}`,
	} {
		if _, err := ParseRequest([]byte(body)); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("body=%s: expected ErrInvalidInput, got %v", body, err)
		}
	}
}

func TestTypes(t *testing.T) {
	req := mustParse(t, `{"intro":"hi","main":["a"],"mainChunks":null,"outro":{"ssml":"x"}}`)
	got := Types(req)
	want := TypeReport{IntroType: "string", MainType: "array", MainChunksType: "null", OutroType: "object"}
	if got != want {
		t.Fatalf("types=%+v want=%+v", got, want)
	}
	if TypeOf(nil) != "undefined" || TypeOf(json.RawMessage(" 12")) != "number" || TypeOf(json.RawMessage("false")) != "boolean" {
		t.Fatalf("unexpected scalar type names")
	}
}

func TestBuildUsesComposerDefaults(t *testing.T) {
	c := NewComposer(ssml.DefaultOptions(), Defaults{R2Prefix: "episodes", SpeakingRate: 1.1})
	resp := c.Build(ssml.Wrap("hi"), nil)
	if resp.TTSMaker.Body.R2Prefix != "episodes" || resp.TTSMaker.Body.AudioConfig.SpeakingRate != 1.1 {
		t.Fatalf("body=%+v", resp.TTSMaker.Body)
	}
	if resp.TTSMaker.Body.Voice.Name != DefaultVoiceName {
		t.Fatalf("voice=%+v", resp.TTSMaker.Body.Voice)
	}
}

func TestComposeSections(t *testing.T) {
	c := newTestComposer()
	resp, err := c.ComposeSections(ssml.Sections{
		Intro: []string{"<speak>Hi</speak>"},
		Main:  []string{"<speak>One</speak>", "<speak>Two</speak>"},
	}, nil)
	if err != nil {
		t.Fatalf("ComposeSections: %v", err)
	}
	want := "<speak>Hi " + pause + " One " + pause + " Two</speak>"
	if resp.Transcript.SSML != want {
		t.Fatalf("ssml=%q want=%q", resp.Transcript.SSML, want)
	}
	if resp.TTSMaker.Body.R2Prefix != DefaultR2Prefix {
		t.Fatalf("prefix=%q", resp.TTSMaker.Body.R2Prefix)
	}

	if _, err := c.ComposeSections(ssml.Sections{}, nil); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}
