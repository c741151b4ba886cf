package content

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Book struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// SponsorLine is the sentence the outro must carry for book.
func (b Book) SponsorLine() string {
	return fmt.Sprintf("This episode was brought to you by %s, available at %s.", b.Title, b.URL)
}

// Catalog holds the static quotes and sponsor books.
type Catalog struct {
	Quotes []string `yaml:"quotes"`
	Books  []Book   `yaml:"books"`

	intn func(n int) int
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	quotes := c.Quotes[:0]
	for _, q := range c.Quotes {
		if q = strings.TrimSpace(q); q != "" {
			quotes = append(quotes, q)
		}
	}
	c.Quotes = quotes
	books := c.Books[:0]
	for _, b := range c.Books {
		b.Title, b.URL = strings.TrimSpace(b.Title), strings.TrimSpace(b.URL)
		if b.Title != "" && b.URL != "" {
			books = append(books, b)
		}
	}
	c.Books = books
	if len(c.Quotes) == 0 {
		return nil, errors.New("catalog has no quotes")
	}
	if len(c.Books) == 0 {
		return nil, errors.New("catalog has no books")
	}
	c.intn = rand.IntN
	return &c, nil
}

// WithPicker replaces the random index source.
func (c *Catalog) WithPicker(intn func(n int) int) *Catalog {
	cp := *c
	cp.intn = intn
	return &cp
}

func (c *Catalog) Quote() string {
	return c.Quotes[c.intn(len(c.Quotes))]
}

func (c *Catalog) Book() Book {
	return c.Books[c.intn(len(c.Books))]
}
