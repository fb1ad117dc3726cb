package part

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/angelodel80/cadmus-api/internal/docjson"
)

// Registry maps part type IDs to their Kind. It is populated once at
// construction and never mutated afterwards, so concurrent reads need no
// locking.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry registers kinds explicitly. Duplicate type IDs are rejected.
func NewRegistry(kinds ...Kind) (*Registry, error) {
	r := &Registry{kinds: make(map[string]Kind, len(kinds))}
	for _, k := range kinds {
		if k.TypeID() == "" {
			return nil, fmt.Errorf("part kind with empty type id")
		}
		if _, dup := r.kinds[k.TypeID()]; dup {
			return nil, fmt.Errorf("part type %q registered twice", k.TypeID())
		}
		r.kinds[k.TypeID()] = k
	}
	return r, nil
}

// Resolve returns the Kind registered for typeID.
func (r *Registry) Resolve(typeID string) (Kind, error) {
	k, ok := r.kinds[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPartType, typeID)
	}
	return k, nil
}

// TypeIDs lists the registered type IDs, sorted.
func (r *Registry) TypeIDs() []string {
	out := make([]string, 0, len(r.kinds))
	for id := range r.kinds {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsLayer reports whether typeID is a registered layer part type.
func (r *Registry) IsLayer(typeID string) bool {
	k, ok := r.kinds[typeID]
	return ok && k.Layer()
}

// Decode turns a stored part document into its typed representation.
// Type and role are looked up on the storage-convention keys.
func (r *Registry) Decode(doc string) (Part, error) {
	storage, err := docjson.ToStorage(docjson.UnwrapDates(doc))
	if err != nil {
		return nil, err
	}

	typeID := gjson.Get(storage, "TypeId")
	if typeID.Type != gjson.String || typeID.Str == "" {
		return nil, ErrMissingTypeID
	}
	// absent or null means the default role
	roleID := gjson.Get(storage, "RoleId").String()

	k, err := r.Resolve(typeID.Str)
	if err != nil {
		return nil, err
	}
	p, err := k.Decode([]byte(storage))
	if err != nil {
		return nil, &MalformedPartError{TypeID: typeID.Str, RoleID: roleID, Err: err}
	}
	if h := p.Header(); h.ID == "" {
		h.ID = gjson.Get(storage, "_id").String()
	}
	return p, nil
}

// ExtractPins decodes doc and returns its pins.
func (r *Registry) ExtractPins(doc string) ([]Pin, error) {
	p, err := r.Decode(doc)
	if err != nil {
		return nil, err
	}
	pins := p.Pins()
	if pins == nil {
		pins = []Pin{}
	}
	return pins, nil
}
