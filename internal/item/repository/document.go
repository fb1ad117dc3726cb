package repository

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/angelodel80/cadmus-api/internal/docjson"
	"github.com/angelodel80/cadmus-api/internal/part"
)

// storageDocument brings a part document to the storage shape shared by the
// memory and Mongo repositories: Pascal-initial keys, the identifier as the
// leading "_id", RoleId null for the default role and TimeModified set to
// now. With keepTime a parseable TimeModified already in the document wins.
func storageDocument(content string, now time.Time, keepTime bool) (string, part.Info, error) {
	doc, err := docjson.ToStorage(docjson.UnwrapDates(strings.TrimSpace(content)))
	if err != nil {
		return "", part.Info{}, err
	}
	if !gjson.Parse(doc).IsObject() {
		return "", part.Info{}, docjson.ErrMalformedDocument
	}

	id := gjson.Get(doc, "Id").String()
	if id == "" {
		id = gjson.Get(doc, "_id").String()
	}
	if id == "" {
		return "", part.Info{}, fmt.Errorf("%w: part without id", docjson.ErrMalformedDocument)
	}
	for _, key := range []string{"Id", "_id"} {
		if doc, err = deleteAll(doc, key); err != nil {
			return "", part.Info{}, err
		}
	}
	if doc, err = docjson.PrependKey(doc, "_id", id); err != nil {
		return "", part.Info{}, err
	}
	// one stored form for the default role, so the unique index sees
	// absent, null and "" as the same key
	if role := gjson.Get(doc, "RoleId"); role.Type == gjson.Null || (role.Type == gjson.String && role.Str == "") {
		if doc, err = sjson.SetRaw(doc, "RoleId", "null"); err != nil {
			return "", part.Info{}, fmt.Errorf("default role: %w", err)
		}
	}
	if keepTime {
		if t, err := time.Parse(time.RFC3339Nano, gjson.Get(doc, "TimeModified").String()); err == nil {
			now = t
		}
	}
	if doc, err = sjson.Set(doc, "TimeModified", now.UTC().Format(time.RFC3339Nano)); err != nil {
		return "", part.Info{}, fmt.Errorf("stamp part: %w", err)
	}
	return doc, headerOf(doc), nil
}

// deleteAll removes every top-level copy of key.
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

// headerOf reads the part header of a storage-shaped document.
func headerOf(doc string) part.Info {
	h := gjson.GetMany(doc, "_id", "ItemId", "TypeId", "RoleId", "UserId", "TimeModified")
	info := part.Info{
		ID:     h[0].String(),
		ItemID: h[1].String(),
		TypeID: h[2].String(),
		RoleID: h[3].String(),
		UserID: h[4].String(),
	}
	if t, err := time.Parse(time.RFC3339Nano, h[5].String()); err == nil {
		info.TimeModified = t
	}
	return info
}

func matchesPart(info part.Info, itemIDs []string, typeID string, roleID *string) bool {
	if len(itemIDs) > 0 && !slices.Contains(itemIDs, info.ItemID) {
		return false
	}
	if typeID != "" && info.TypeID != typeID {
		return false
	}
	if roleID != nil && info.RoleID != *roleID {
		return false
	}
	return true
}
