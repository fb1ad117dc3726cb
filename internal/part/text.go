package part

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Layer roles of token text layer parts. The role decides the fragment shape.
const (
	RoleComment   = "fr.comment"
	RoleQuotation = "fr.quotation"
	RoleApparatus = "fr.apparatus"
)

// TextLine is one line of a token text; Y is 1-based.
type TextLine struct {
	Y    int    `json:"y"`
	Text string `json:"text"`
}

// TokenTextPart is a base text split into lines of space-separated tokens.
type TokenTextPart struct {
	Info
	Citation string     `json:"citation"`
	Lines    []TextLine `json:"lines"`
}

func (p *TokenTextPart) Pins() []Pin {
	return []Pin{pin("line-count", strconv.Itoa(len(p.Lines)))}
}

// Fragment is a layer annotation anchored at a "y.x" token location.
type Fragment interface {
	FragmentLocation() string
	Pins() []Pin
}

// CommentFragment is a free comment on a text portion.
type CommentFragment struct {
	Location string `json:"location"`
	Text     string `json:"text"`
}

func (f *CommentFragment) FragmentLocation() string { return f.Location }

func (f *CommentFragment) Pins() []Pin { return nil }

// QuotationFragment links a text portion to the work it quotes.
type QuotationFragment struct {
	Location  string `json:"location"`
	Author    string `json:"author"`
	Work      string `json:"work"`
	WorkLoc   string `json:"workLoc"`
	VariantOf string `json:"variantOf"`
}

func (f *QuotationFragment) FragmentLocation() string { return f.Location }

func (f *QuotationFragment) Pins() []Pin {
	var pins []Pin
	if f.Author != "" {
		pins = append(pins, pin("fr.author", f.Author))
	}
	if f.Work != "" {
		pins = append(pins, pin("fr.work", f.Work))
	}
	return pins
}

// VariantType classifies an apparatus entry.
type VariantType int

const (
	VariantReplacement VariantType = iota
	VariantAdditionBefore
	VariantAdditionAfter
	VariantDeletion
	VariantNote
)

// ApparatusFragment is a critical apparatus entry.
type ApparatusFragment struct {
	Location   string      `json:"location"`
	Type       VariantType `json:"type"`
	Value      string      `json:"value"`
	IsAccepted bool        `json:"isAccepted"`
	Authors    []string    `json:"authors"`
	Note       string      `json:"note"`
}

func (f *ApparatusFragment) FragmentLocation() string { return f.Location }

func (f *ApparatusFragment) Pins() []Pin {
	var pins []Pin
	if f.Type != VariantNote && f.Value != "" {
		pins = append(pins, pin("fr.variant", f.Value))
	}
	for _, a := range f.Authors {
		pins = append(pins, pin("fr.witness", a))
	}
	return pins
}

// TokenTextLayerPart holds the fragments of one layer over a token text.
// Fragments are decoded according to the part's role.
type TokenTextLayerPart struct {
	Info
	RawFragments []json.RawMessage `json:"fragments"`
	Fragments    []Fragment        `json:"-"`
}

func (p *TokenTextLayerPart) afterDecode() error {
	var newFragment func() Fragment
	switch p.RoleID {
	case RoleComment:
		newFragment = func() Fragment { return &CommentFragment{} }
	case RoleQuotation:
		newFragment = func() Fragment { return &QuotationFragment{} }
	case RoleApparatus:
		newFragment = func() Fragment { return &ApparatusFragment{} }
	default:
		return fmt.Errorf("no fragment type for layer role %q", p.RoleID)
	}

	p.Fragments = make([]Fragment, 0, len(p.RawFragments))
	for i, raw := range p.RawFragments {
		fr := newFragment()
		if err := json.Unmarshal(raw, fr); err != nil {
			return fmt.Errorf("fragment %d: %w", i, err)
		}
		p.Fragments = append(p.Fragments, fr)
	}
	return nil
}

func (p *TokenTextLayerPart) Pins() []Pin {
	pins := []Pin{pin("fr.count", strconv.Itoa(len(p.Fragments)))}
	for _, fr := range p.Fragments {
		pins = append(pins, fr.Pins()...)
	}
	return pins
}
