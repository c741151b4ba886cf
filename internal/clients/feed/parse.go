package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rawItem is a feed entry before filtering, common to RSS and Atom.
type rawItem struct {
	Title   string
	Summary string
	Date    string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Content     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PubDate     string `xml:"pubDate"`
	DcDate      string `xml:"http://purl.org/dc/elements/1.1/ date"`
}

type atomDoc struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Content   string `xml:"content"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
}

// parse detects RSS 2.0 or Atom from the root element.
func parse(data []byte) ([]rawItem, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}
	switch root {
	case "rss":
		var doc rssDoc
		if err := decodeLenient(data, &doc); err != nil {
			return nil, fmt.Errorf("parse rss: %w", err)
		}
		items := make([]rawItem, 0, len(doc.Channel.Items))
		for _, it := range doc.Channel.Items {
			items = append(items, rawItem{
				Title:   strings.TrimSpace(it.Title),
				Summary: Snippet(firstNonEmpty(it.Description, it.Content)),
				Date:    strings.TrimSpace(firstNonEmpty(it.PubDate, it.DcDate)),
			})
		}
		return items, nil
	case "feed":
		var doc atomDoc
		if err := decodeLenient(data, &doc); err != nil {
			return nil, fmt.Errorf("parse atom: %w", err)
		}
		items := make([]rawItem, 0, len(doc.Entries))
		for _, e := range doc.Entries {
			items = append(items, rawItem{
				Title:   strings.TrimSpace(e.Title),
				Summary: Snippet(firstNonEmpty(e.Summary, e.Content)),
				Date:    strings.TrimSpace(firstNonEmpty(e.Published, e.Updated)),
			})
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported feed root <%s>", root)
	}
}

// decodeLenient tolerates HTML entities and unclosed tags that real feeds
// often carry.
func decodeLenient(data []byte, v any) error {
	return newDecoder(data).Decode(v)
}

func newDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	return dec
}

func rootElement(data []byte) (string, error) {
	dec := newDecoder(data)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("no root element: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

// Snippet reduces an HTML description to plain text on one line.
func Snippet(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
