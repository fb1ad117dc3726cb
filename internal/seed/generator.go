// Package seed fills a database with pseudo-random items and parts, for
// demos and load tests. All randomness comes from an explicit source so a
// given seed always yields the same content.
package seed

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/part"
)

// DefaultCategories is used when no profile is given.
var DefaultCategories = []string{
	"language.phonology",
	"language.morphology",
	"language.syntax",
	"literature",
	"history",
	"geography",
	"religion",
}

// LoadCategories reads the "categories" list from a profile file (any format
// viper understands).
func LoadCategories(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading seed profile: %w", err)
	}
	cats := v.GetStringSlice("categories")
	if len(cats) == 0 {
		return nil, fmt.Errorf("seed profile %s has no categories", path)
	}
	return cats, nil
}

// Generator builds item records and part documents.
type Generator struct {
	r          *rand.Rand
	categories []string
}

// NewGenerator uses r for every random choice. Empty categories fall back to
// DefaultCategories.
func NewGenerator(r *rand.Rand, categories []string) *Generator {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	return &Generator{r: r, categories: categories}
}

// NewSeededGenerator is NewGenerator over a PCG source seeded with seed.
func NewSeededGenerator(seed uint64, categories []string) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)), categories)
}

// sourceReader feeds uuid generation from the generator's source.
type sourceReader struct{ r *rand.Rand }

func (s sourceReader) Read(p []byte) (int, error) {
	var b [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(b[:], s.r.Uint64())
		copy(p[i:], b[:])
	}
	return len(p), nil
}

// newID draws a canonical identifier, so a seed also fixes item and part ids.
func (g *Generator) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(sourceReader{g.r})).String()
}

func oddEven(n int) string {
	if n%2 == 1 {
		return "odd"
	}
	return "even"
}

// Owner is the user the n-th item (1-based) and its parts belong to.
func Owner(n int) string { return oddEven(n) }

// Item builds the n-th item (1-based).
func (g *Generator) Item(n int, facet string) *models.ItemRecord {
	return &models.ItemRecord{
		ID:          g.newID(),
		Title:       fmt.Sprintf("Item #%d", n),
		Description: fmt.Sprintf("Description for %s item number %s.", oddEven(n), NumberToWords(n)),
		FacetID:     facet,
		SortKey:     fmt.Sprintf("item-%05d", n),
		Flags:       n % 2,
	}
}

// Parts builds the wire documents of the parts of the n-th item. Layers
// follow the token text they annotate.
func (g *Generator) Parts(itemID string, n int) ([]string, error) {
	info := func(typeID, roleID string) part.Info {
		return part.Info{ID: g.newID(), ItemID: itemID, TypeID: typeID, RoleID: roleID, UserID: Owner(n)}
	}

	var parts []any
	parts = append(parts, g.categoriesPart(info(part.TypeCategories, ""), n))
	switch n % 4 {
	case 0:
		if g.r.IntN(3) == 0 {
			parts = append(parts, g.datePart(info(part.TypeHistoricalDate, "")))
		}
	case 1:
		parts = append(parts, g.keywordsPart(info(part.TypeKeywords, ""), n))
	case 2:
		parts = append(parts,
			g.keywordsPart(info(part.TypeKeywords, ""), n),
			g.notePart(info(part.TypeNote, "")))
	case 3:
		parts = append(parts,
			g.keywordsPart(info(part.TypeKeywords, ""), n),
			g.notePart(info(part.TypeNote, "")))
		text := g.textPart(info(part.TypeTokenText, ""), n)
		parts = append(parts, text)

		layers, err := g.layerParts(text, info)
		if err != nil {
			return nil, err
		}
		parts = append(parts, layers...)
	}

	docs := make([]string, 0, len(parts))
	for _, p := range parts {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, string(b))
	}
	return docs, nil
}

func (g *Generator) categoriesPart(info part.Info, n int) *part.CategoriesPart {
	want := 1
	if n%2 == 1 {
		want = 2
	}
	p := &part.CategoriesPart{Info: info}
	for len(p.Categories) < want && len(p.Categories) < len(g.categories) {
		c := g.categories[g.r.IntN(len(g.categories))]
		if !slices.Contains(p.Categories, c) {
			p.Categories = append(p.Categories, c)
		}
	}
	return p
}

func (g *Generator) keywordsPart(info part.Info, n int) *part.KeywordsPart {
	want := 1
	if n%2 == 1 {
		want = 2
	}
	p := &part.KeywordsPart{Info: info}
	for len(p.Keywords) < want {
		kw := part.Keyword{Language: "eng", Value: NumberToWords(g.r.IntN(19) + 1)}
		if !slices.Contains(p.Keywords, kw) {
			p.Keywords = append(p.Keywords, kw)
		}
	}
	return p
}

func (g *Generator) notePart(info part.Info) *part.NotePart {
	return &part.NotePart{Info: info, Text: Lorem(g.r, g.r.IntN(50)+10, 12)}
}

func (g *Generator) datation() *part.Datation {
	if g.r.IntN(5) == 0 {
		v := g.r.IntN(14) - 8
		if v == 0 {
			v = 1
		}
		return &part.Datation{Value: v, IsCentury: true}
	}
	v := g.r.IntN(1230) - 753
	if v == 0 {
		v = 1
	}
	return &part.Datation{Value: v}
}

func (g *Generator) datePart(info part.Info) *part.HistoricalDatePart {
	p := &part.HistoricalDatePart{Info: info}
	p.Date.A = g.datation()
	if g.r.IntN(10) == 0 {
		b := g.datation()
		if b.SortValue() < p.Date.A.SortValue() {
			p.Date.A, b = b, p.Date.A
		}
		p.Date.B = b
	}
	return p
}

func (g *Generator) textPart(info part.Info, n int) *part.TokenTextPart {
	p := &part.TokenTextPart{Info: info, Citation: fmt.Sprintf("Text #%d", n)}
	for i, line := range strings.Split(Lorem(g.r, g.r.IntN(24)+12, 6), "\n") {
		p.Lines = append(p.Lines, part.TextLine{Y: i + 1, Text: line})
	}
	return p
}

// location picks a random token of text as "y.x".
func (g *Generator) location(text *part.TokenTextPart) string {
	line := text.Lines[g.r.IntN(len(text.Lines))]
	tokens := len(strings.Fields(line.Text))
	return fmt.Sprintf("%d.%d", line.Y, g.r.IntN(tokens)+1)
}

func (g *Generator) layerParts(text *part.TokenTextPart, info func(string, string) part.Info) ([]any, error) {
	var layers []any

	comment, err := newLayer(info(part.TypeTokenTextLayer, part.RoleComment),
		&part.CommentFragment{Location: g.location(text), Text: Lorem(g.r, g.r.IntN(15)+5, 12)})
	if err != nil {
		return nil, err
	}
	layers = append(layers, comment)

	if g.r.IntN(3) == 0 {
		fr := &part.QuotationFragment{
			Location: g.location(text),
			Author:   "au-" + g.letter(),
			Work:     "wk-" + g.letter(),
			WorkLoc:  fmt.Sprintf("%d.%d", g.r.IntN(24)+1, g.r.IntN(100)+1),
		}
		if g.r.IntN(9) == 0 {
			fr.VariantOf = Lorem(g.r, 3, 0)
		}
		quotation, err := newLayer(info(part.TypeTokenTextLayer, part.RoleQuotation), fr)
		if err != nil {
			return nil, err
		}
		layers = append(layers, quotation)
	}

	if g.r.IntN(3) == 0 {
		fr := &part.ApparatusFragment{
			Location: g.location(text),
			Type:     part.VariantType(g.r.IntN(5)),
		}
		witnesses := g.r.IntN(2) + 1
		if fr.Type == part.VariantNote {
			fr.Note = Lorem(g.r, g.r.IntN(40)+10, 0)
			witnesses = g.r.IntN(3)
		} else {
			fr.Value = Lorem(g.r, g.r.IntN(7)+3, 0)
			fr.IsAccepted = g.r.IntN(2) == 1
		}
		for len(fr.Authors) < witnesses {
			w := "wit-" + g.letter()
			if !slices.Contains(fr.Authors, w) {
				fr.Authors = append(fr.Authors, w)
			}
		}
		apparatus, err := newLayer(info(part.TypeTokenTextLayer, part.RoleApparatus), fr)
		if err != nil {
			return nil, err
		}
		layers = append(layers, apparatus)
	}
	return layers, nil
}

func (g *Generator) letter() string {
	return string(rune('A' + g.r.IntN(26)))
}

func newLayer(info part.Info, fragments ...part.Fragment) (*part.TokenTextLayerPart, error) {
	p := &part.TokenTextLayerPart{Info: info, Fragments: fragments}
	for _, fr := range fragments {
		raw, err := json.Marshal(fr)
		if err != nil {
			return nil, err
		}
		p.RawFragments = append(p.RawFragments, raw)
	}
	return p, nil
}
