package models

import (
	"encoding/json"
	"math"
	"time"
)

// ItemInfo is an item without its parts. Field names in storage are
// Pascal-initial, like every other Cadmus document.
type ItemInfo struct {
	ID           string    `bson:"_id" json:"id"`
	Title        string    `bson:"Title" json:"title"`
	Description  string    `bson:"Description" json:"description"`
	FacetID      string    `bson:"FacetId" json:"facetId"`
	SortKey      string    `bson:"SortKey" json:"sortKey"`
	Flags        int       `bson:"Flags" json:"flags"`
	TimeModified time.Time `bson:"TimeModified" json:"timeModified"`
	UserID       string    `bson:"UserId" json:"userId"`
}

// Item is an item with its parts, each rendered as wire JSON.
type Item struct {
	ItemInfo `bson:",inline"`
	Parts    []json.RawMessage `bson:"-" json:"parts,omitempty"`
}

// ItemRecord is the client-submitted item. A missing or non-canonical ID
// makes it a new item.
type ItemRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required,max=500"`
	Description string `json:"description" binding:"required,max=1000"`
	FacetID     string `json:"facetId" binding:"required,max=50"`
	SortKey     string `json:"sortKey" binding:"required,max=500"`
	Flags       int    `json:"flags"`
}

// ItemFilter selects a page of items. Empty fields do not filter.
type ItemFilter struct {
	PageNumber  int    `form:"pageNumber"`
	PageSize    int    `form:"pageSize"`
	Title       string `form:"title"`
	Description string `form:"description"`
	FacetID     string `form:"facetId"`
	Flags       int    `form:"flags"`
	UserID      string `form:"userId"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// maxPageNumber keeps Skip within an int at any page size.
	maxPageNumber = math.MaxInt/MaxPageSize + 1
)

// Normalize clamps paging to sane values.
func (f *ItemFilter) Normalize() {
	if f.PageNumber < 1 {
		f.PageNumber = 1
	}
	if f.PageNumber > maxPageNumber {
		f.PageNumber = maxPageNumber
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Skip is the number of records before the requested page.
func (f *ItemFilter) Skip() int {
	return (f.PageNumber - 1) * f.PageSize
}

// DataPage is one page of a filtered result set.
type DataPage[T any] struct {
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	Items      []T   `json:"items"`
}
