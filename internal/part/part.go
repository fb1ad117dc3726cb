// Package part holds the typed part catalog and the registry that resolves a
// part's type identifier to the Kind able to decode it and compute its pins.
package part

import (
	"encoding/json"
	"time"
)

// Info is the header shared by every part. The json tags follow the wire
// convention; decoding from storage documents works too because key matching
// in encoding/json is case-insensitive.
type Info struct {
	ID           string    `json:"id" bson:"_id"`
	ItemID       string    `json:"itemId" bson:"ItemId"`
	TypeID       string    `json:"typeId" bson:"TypeId"`
	RoleID       string    `json:"roleId" bson:"RoleId"`
	TimeModified time.Time `json:"timeModified" bson:"TimeModified"`
	UserID       string    `json:"userId" bson:"UserId"`
}

// Header returns the receiver; embedding Info gives every part type this
// method.
func (i *Info) Header() *Info { return i }

// Pin is a searchable name/value pair derived from a part's content.
type Pin struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Part is a decoded part document.
type Part interface {
	Header() *Info
	// Pins returns the part's pins in a stable, type-defined order.
	Pins() []Pin
}

// Kind is the capability set every registrable part type implements.
type Kind interface {
	TypeID() string
	// Layer reports whether parts of this kind are annotation layers over a
	// base text part.
	Layer() bool
	Decode(doc []byte) (Part, error)
}

// afterDecoder is implemented by parts needing a second pass once the plain
// JSON decode is done (e.g. layer fragments, whose shape depends on the role).
type afterDecoder interface {
	afterDecode() error
}

type kind[T any, PT interface {
	*T
	Part
}] struct {
	typeID string
	layer  bool
}

func newKind[T any, PT interface {
	*T
	Part
}](typeID string, layer bool) Kind {
	return kind[T, PT]{typeID: typeID, layer: layer}
}

func (k kind[T, PT]) TypeID() string { return k.typeID }

func (k kind[T, PT]) Layer() bool { return k.layer }

func (k kind[T, PT]) Decode(doc []byte) (Part, error) {
	p := PT(new(T))
	if err := json.Unmarshal(doc, p); err != nil {
		return nil, err
	}
	if ad, ok := any(p).(afterDecoder); ok {
		if err := ad.afterDecode(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func pin(name, value string) Pin {
	return Pin{Name: name, Value: value}
}
