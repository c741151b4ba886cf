package ssml

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

const (
	RootOpen  = "<speak>"
	RootClose = "</speak>"

	DefaultSectionPause = 700 * time.Millisecond
	DefaultChunkPause   = 700 * time.Millisecond
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// PauseMarker renders a timed break element.
func PauseMarker(d time.Duration) string {
	return fmt.Sprintf(`<break time="%dms"/>`, d.Milliseconds())
}

// Options controls the pause inserted at each join tier.
type Options struct {
	SectionPause time.Duration
	ChunkPause   time.Duration
}

func DefaultOptions() Options {
	return Options{SectionPause: DefaultSectionPause, ChunkPause: DefaultChunkPause}
}

func (o Options) withDefaults() Options {
	if o.SectionPause <= 0 {
		o.SectionPause = DefaultSectionPause
	}
	if o.ChunkPause <= 0 {
		o.ChunkPause = DefaultChunkPause
	}
	return o
}

// Sections holds the coerced fragments of each role. Main fragments are
// treated as separate chunks; intro and outro fragments are run together.
type Sections struct {
	Intro []string
	Main  []string
	Outro []string
}

// Document is a single-line speech document with exactly one root wrapper.
type Document struct {
	inner string
}

func (d Document) String() string { return RootOpen + d.inner + RootClose }

// Inner returns the body without the root wrapper.
func (d Document) Inner() string { return d.inner }

func (d Document) Empty() bool { return d.inner == "" }

// Plain strips all markup for transcript display.
func (d Document) Plain() string {
	if d.inner == "" {
		return ""
	}
	return CollapseWhitespace(html.UnescapeString(tagRe.ReplaceAllString(d.inner, " ")))
}

// MarshalText lets a Document be encoded directly as its markup string.
func (d Document) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Wrap normalises one fragment into a standalone document.
func Wrap(fragment string) Document {
	return Document{inner: Flatten(fragment)}
}

// Assemble merges the sections in intro, main, outro order. Empty sections
// and empty fragments contribute neither content nor pause markers.
func Assemble(s Sections, opts Options) Document {
	opts = opts.withDefaults()
	sectionSep := " " + PauseMarker(opts.SectionPause) + " "
	chunkSep := " " + PauseMarker(opts.ChunkPause) + " "

	bodies := make([]string, 0, 3)
	if intro := joinFlat(s.Intro, " "); intro != "" {
		bodies = append(bodies, intro)
	}
	if main := joinFlat(s.Main, chunkSep); main != "" {
		bodies = append(bodies, main)
	}
	if outro := joinFlat(s.Outro, " "); outro != "" {
		bodies = append(bodies, outro)
	}
	return Document{inner: strings.Join(bodies, sectionSep)}
}

func joinFlat(fragments []string, sep string) string {
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if v := Flatten(f); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

// EnsureLeadingLine speaks line first, followed by a pause, unless the
// document already contains it (case-insensitive). It is a content policy
// applied by callers, not part of assembly.
func EnsureLeadingLine(doc Document, line string, pause time.Duration) Document {
	line = CollapseWhitespace(line)
	if line == "" {
		return doc
	}
	if strings.Contains(strings.ToLower(doc.inner), strings.ToLower(line)) {
		return doc
	}
	inner := line + " " + PauseMarker(pause)
	if doc.inner != "" {
		inner += " " + doc.inner
	}
	return Document{inner: inner}
}
