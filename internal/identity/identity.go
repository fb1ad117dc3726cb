// Package identity decides whether a submitted document is new or an update
// of an existing one, and stamps it with the authenticated caller.
package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/angelodel80/cadmus-api/internal/docjson"
)

const (
	idKey   = "id"
	userKey = "userId"
)

// canonicalRegex accepts the hyphenated 8-4-4-4-12 form only.
var canonicalRegex = regexp.MustCompile(
	`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)

// IsCanonical reports whether id has the shape of an existing identifier.
func IsCanonical(id string) bool {
	return canonicalRegex.MatchString(id)
}

// NewID returns a fresh identifier in canonical (hyphenated, lowercase) form.
func NewID() string {
	return uuid.NewString()
}

// ResolveItemID returns the identifier to use for an item record and whether
// the record is new. A non-canonical id is never an error: it is replaced.
func ResolveItemID(id string) (string, bool) {
	if IsCanonical(id) {
		return id, false
	}
	return NewID(), true
}

// Prepared is a raw document ready to be handed to storage.
type Prepared struct {
	Doc   string
	ID    string
	IsNew bool
}

// PrepareForUpsert resolves the identity of a raw part document and replaces
// its userId with caller (empty when unauthenticated). Client-supplied
// ownership is always discarded. The transform is structural and does no I/O.
func PrepareForUpsert(raw, caller string) (*Prepared, error) {
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return nil, docjson.ErrMalformedDocument
	}

	p := &Prepared{Doc: raw}
	id := gjson.Get(raw, idKey)
	p.IsNew = id.Type != gjson.String || !IsCanonical(id.Str)

	var err error
	if p.IsNew {
		if p.Doc, err = deleteAll(p.Doc, idKey); err != nil {
			return nil, err
		}
		p.ID = NewID()
		if p.Doc, err = docjson.PrependKey(p.Doc, idKey, p.ID); err != nil {
			return nil, err
		}
	} else {
		p.ID = id.Str
	}

	if p.Doc, err = deleteAll(p.Doc, userKey); err != nil {
		return nil, err
	}
	if p.Doc, err = sjson.Set(p.Doc, userKey, caller); err != nil {
		return nil, fmt.Errorf("set userId: %w", err)
	}
	return p, nil
}

// deleteAll removes every top-level copy of key; duplicated keys are legal
// JSON and gjson only sees the first.
func deleteAll(doc, key string) (string, error) {
	for gjson.Get(doc, key).Exists() {
		next, err := sjson.Delete(doc, key)
		if err != nil {
			return "", fmt.Errorf("remove %s: %w", key, err)
		}
		if next == doc {
			break
		}
		doc = next
	}
	return doc, nil
}
