package part

import (
	"sort"
	"strconv"
)

// CategoriesPart tags an item with one or more category IDs.
type CategoriesPart struct {
	Info
	Categories []string `json:"categories"`
}

func (p *CategoriesPart) Pins() []Pin {
	cats := append([]string(nil), p.Categories...)
	sort.Strings(cats)
	pins := make([]Pin, 0, len(cats))
	for _, c := range cats {
		pins = append(pins, pin("category", c))
	}
	return pins
}

// Keyword is a language-tagged keyword.
type Keyword struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// KeywordsPart holds the item's keywords.
type KeywordsPart struct {
	Info
	Keywords []Keyword `json:"keywords"`
}

func (p *KeywordsPart) Pins() []Pin {
	kws := append([]Keyword(nil), p.Keywords...)
	sort.Slice(kws, func(i, j int) bool {
		if kws[i].Language != kws[j].Language {
			return kws[i].Language < kws[j].Language
		}
		return kws[i].Value < kws[j].Value
	})
	pins := make([]Pin, 0, len(kws))
	for _, k := range kws {
		pins = append(pins, pin("keyword."+k.Language, k.Value))
	}
	return pins
}

// NotePart is free text with an optional tag.
type NotePart struct {
	Info
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

func (p *NotePart) Pins() []Pin {
	if p.Tag == "" {
		return nil
	}
	return []Pin{pin("tag", p.Tag)}
}

// Datation is a single point in time. Value is a year, or a century when
// IsCentury is set; negative values are BC. There is no year or century 0.
type Datation struct {
	Value     int    `json:"value"`
	IsCentury bool   `json:"isCentury"`
	IsSpan    bool   `json:"isSpan"`
	IsAbout   bool   `json:"isAbout"`
	IsDubious bool   `json:"isDubious"`
	Day       int    `json:"day"`
	Month     int    `json:"month"`
	Hint      string `json:"hint"`
}

// SortValue maps the point onto a continuous year scale. A century sorts at
// its midpoint; month and day add a fraction of the year.
func (d Datation) SortValue() float64 {
	if d.IsCentury {
		if d.Value < 0 {
			return float64(d.Value*100 + 50)
		}
		return float64((d.Value-1)*100 + 50)
	}
	v := float64(d.Value)
	var frac float64
	if d.Month > 0 {
		frac = float64(d.Month-1) / 12
		if d.Day > 0 {
			frac += float64(d.Day-1) / 365
		}
	}
	if d.Value < 0 {
		return v - frac
	}
	return v + frac
}

// HistoricalDate is either a single point (A only) or a range A-B.
type HistoricalDate struct {
	A *Datation `json:"a"`
	B *Datation `json:"b"`
}

// SortValue is A's value for a point, the midpoint for a range, and 0 for an
// empty date.
func (h HistoricalDate) SortValue() float64 {
	switch {
	case h.A == nil:
		return 0
	case h.B == nil:
		return h.A.SortValue()
	default:
		return (h.A.SortValue() + h.B.SortValue()) / 2
	}
}

// HistoricalDatePart dates an item.
type HistoricalDatePart struct {
	Info
	Date HistoricalDate `json:"date"`
}

func (p *HistoricalDatePart) Pins() []Pin {
	return []Pin{pin("date-value", strconv.FormatFloat(p.Date.SortValue(), 'f', 2, 64))}
}
