package compose

import (
	"encoding/json"

	"github.com/yungbote/ssmlcast/internal/ssml"
)

const (
	DefaultVoiceName     = "en-GB-Wavenet-B"
	DefaultLanguageCode  = "en-GB"
	DefaultAudioEncoding = "MP3"
	DefaultSpeakingRate  = 1.0
	DefaultR2Prefix      = "podcast"

	TTSEndpoint = "/tts/chunked"
)

// Defaults are applied to voice and storage fields a request leaves out.
type Defaults struct {
	VoiceName     string
	LanguageCode  string
	AudioEncoding string
	SpeakingRate  float64
	R2Prefix      string
}

func DefaultDefaults() Defaults {
	return Defaults{
		VoiceName:     DefaultVoiceName,
		LanguageCode:  DefaultLanguageCode,
		AudioEncoding: DefaultAudioEncoding,
		SpeakingRate:  DefaultSpeakingRate,
		R2Prefix:      DefaultR2Prefix,
	}
}

func (d Defaults) fill() Defaults {
	base := DefaultDefaults()
	if d.VoiceName == "" {
		d.VoiceName = base.VoiceName
	}
	if d.LanguageCode == "" {
		d.LanguageCode = base.LanguageCode
	}
	if d.AudioEncoding == "" {
		d.AudioEncoding = base.AudioEncoding
	}
	if d.SpeakingRate <= 0 {
		d.SpeakingRate = base.SpeakingRate
	}
	if d.R2Prefix == "" {
		d.R2Prefix = base.R2Prefix
	}
	return d
}

type Response struct {
	Transcript Transcript `json:"transcript"`
	TTSMaker   TTSMaker   `json:"tts_maker"`
}

type Transcript struct {
	Plain string `json:"plain"`
	SSML  string `json:"ssml"`
}

type TTSMaker struct {
	Endpoint string  `json:"endpoint"`
	Body     TTSBody `json:"body"`
}

type TTSBody struct {
	Text        string      `json:"text"`
	Voice       Voice       `json:"voice"`
	AudioConfig AudioConfig `json:"audioConfig"`
	R2Prefix    string      `json:"R2_PREFIX"`
}

type Voice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type AudioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate"`
}

type Composer struct {
	opts     ssml.Options
	defaults Defaults
}

func NewComposer(opts ssml.Options, defaults Defaults) *Composer {
	return &Composer{opts: opts, defaults: defaults.fill()}
}

// Sections resolves the request's section fields into fragments. A
// mainChunks value that yields content takes precedence over main.
func Sections(req *Request) ssml.Sections {
	main := ssml.Decode(req.MainChunks).Strings()
	if !hasContent(main) {
		main = ssml.Decode(req.Main).Strings()
	}
	return ssml.Sections{
		Intro: ssml.Decode(req.Intro).Strings(),
		Main:  main,
		Outro: ssml.Decode(req.Outro).Strings(),
	}
}

// Compose merges the request sections into one document and shapes the
// downstream handoff. It fails only when nothing is left to speak.
func (c *Composer) Compose(req *Request) (*Response, error) {
	return c.ComposeSections(Sections(req), req)
}

// ComposeSections is Compose for sections produced elsewhere, such as by the
// episode pipeline. req supplies voice and storage fields and may be nil.
func (c *Composer) ComposeSections(s ssml.Sections, req *Request) (*Response, error) {
	if req == nil {
		req = &Request{}
	}
	doc := ssml.Assemble(s, c.opts)
	if doc.Empty() {
		return nil, newEmptyDocumentError(req)
	}
	return c.Build(doc, req), nil
}

// Build shapes a finished document into the response payload, using the
// request only for voice and storage fields. req may be nil.
func (c *Composer) Build(doc ssml.Document, req *Request) *Response {
	if req == nil {
		req = &Request{}
	}
	d := c.defaults
	voiceName := pick(req.VoiceName, d.VoiceName)
	rate := d.SpeakingRate
	if req.SpeakingRate != nil {
		rate = *req.SpeakingRate
	}
	text := doc.String()
	return &Response{
		Transcript: Transcript{Plain: doc.Plain(), SSML: text},
		TTSMaker: TTSMaker{
			Endpoint: TTSEndpoint,
			Body: TTSBody{
				Text:        text,
				Voice:       Voice{LanguageCode: pick(req.LanguageCode, d.LanguageCode), Name: voiceName},
				AudioConfig: AudioConfig{AudioEncoding: pick(req.AudioEncoding, d.AudioEncoding), SpeakingRate: rate},
				R2Prefix:    pick(req.R2Prefix, d.R2Prefix),
			},
		},
	}
}

// TypeReport names the JSON type of each section field as a JavaScript
// client would see it.
type TypeReport struct {
	IntroType      string `json:"introType"`
	MainType       string `json:"mainType"`
	MainChunksType string `json:"mainChunksType"`
	OutroType      string `json:"outroType"`
}

func Types(req *Request) TypeReport {
	return TypeReport{
		IntroType:      TypeOf(req.Intro),
		MainType:       TypeOf(req.Main),
		MainChunksType: TypeOf(req.MainChunks),
		OutroType:      TypeOf(req.Outro),
	}
}

// TypeOf reports array, object, string, number, boolean, null, or undefined
// for an absent value.
func TypeOf(raw json.RawMessage) string {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return "array"
		case '{':
			return "object"
		case '"':
			return "string"
		case 't', 'f':
			return "boolean"
		case 'n':
			return "null"
		default:
			return "number"
		}
	}
	return "undefined"
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func hasContent(fragments []string) bool {
	for _, f := range fragments {
		if ssml.Flatten(f) != "" {
			return true
		}
	}
	return false
}
