package part

// Type IDs of the built-in catalog.
const (
	TypeCategories     = "categories"
	TypeKeywords       = "keywords"
	TypeNote           = "note"
	TypeHistoricalDate = "historical-date"
	TypeTokenText      = "token-text"
	TypeTokenTextLayer = "token-text-layer"
)

// DefaultRegistry returns a registry holding the built-in catalog.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		newKind[CategoriesPart](TypeCategories, false),
		newKind[KeywordsPart](TypeKeywords, false),
		newKind[NotePart](TypeNote, false),
		newKind[HistoricalDatePart](TypeHistoricalDate, false),
		newKind[TokenTextPart](TypeTokenText, false),
		newKind[TokenTextLayerPart](TypeTokenTextLayer, true),
	)
	if err != nil {
		// the catalog is static; a duplicate here is a programming error
		panic(err)
	}
	return r
}
