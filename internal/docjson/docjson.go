// Package docjson rewrites part and item documents between the storage
// naming convention (Pascal-initial keys, "_id") and the wire naming
// convention (camel-initial keys, "id").
//
// Rewriting walks the parsed JSON tree and only touches keys; values are
// copied byte for byte, so a string value that happens to look like
// `"Name":` is never altered.
package docjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformedDocument is returned when a document is not a valid JSON text
// (or not an object where one is required).
var ErrMalformedDocument = errors.New("malformed document")

// isoDateRegex matches the shell-mode date wrapper some Mongo tools emit.
var isoDateRegex = regexp.MustCompile(`ISODate\(([^)]+)\)`)

// UnwrapDates replaces every ISODate(<literal>) with <literal>. The literal is
// not parsed or validated. This is lexical and one-way: the wrapper is not
// valid JSON, so it must go before the document can be parsed.
func UnwrapDates(doc string) string {
	if !strings.Contains(doc, "ISODate(") {
		return doc
	}
	return isoDateRegex.ReplaceAllString(doc, "$1")
}

// ToWire converts a stored document to the wire convention: dates unwrapped,
// Pascal-initial keys lowered at every depth, and "_id" renamed to "id".
// Applying it to an already normalized document is a no-op.
func ToWire(doc string) (string, error) {
	return RewriteKeys(UnwrapDates(doc), wireKey)
}

// ToStorage converts keys to the storage convention by raising the initial
// letter at every depth. It does not reverse the "_id" rename nor restore
// date wrappers; both are artifacts of the storage engine only.
func ToStorage(doc string) (string, error) {
	return RewriteKeys(doc, storageKey)
}

func wireKey(name string) string {
	if name == "_id" {
		return "id"
	}
	if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
		return string(name[0]+('a'-'A')) + name[1:]
	}
	return name
}

func storageKey(name string) string {
	if len(name) > 0 && name[0] >= 'a' && name[0] <= 'z' {
		return string(name[0]-('a'-'A')) + name[1:]
	}
	return name
}

// RewriteKeys returns doc with every object key (at any depth) passed through
// rename. The output is compact; values keep their original text.
func RewriteKeys(doc string, rename func(string) string) (string, error) {
	if !gjson.Valid(doc) {
		return "", ErrMalformedDocument
	}
	var sb strings.Builder
	sb.Grow(len(doc))
	writeValue(&sb, gjson.Parse(doc), rename)
	return sb.String(), nil
}

func writeValue(sb *strings.Builder, v gjson.Result, rename func(string) string) {
	switch {
	case v.IsObject():
		sb.WriteByte('{')
		first := true
		v.ForEach(func(key, value gjson.Result) bool {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			// key.Raw is the quoted key as it appears in the text; renaming
			// only looks at its first byte, so escapes survive untouched.
			raw := key.Raw
			sb.WriteByte('"')
			sb.WriteString(rename(raw[1 : len(raw)-1]))
			sb.WriteString(`":`)
			writeValue(sb, value, rename)
			return true
		})
		sb.WriteByte('}')
	case v.IsArray():
		sb.WriteByte('[')
		first := true
		v.ForEach(func(_, value gjson.Result) bool {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			writeValue(sb, value, rename)
			return true
		})
		sb.WriteByte(']')
	default:
		sb.WriteString(strings.TrimSpace(v.Raw))
	}
}

// PrependKey inserts key as the first property of the object doc.
// The caller must make sure key is not already present.
func PrependKey(doc, key string, value any) (string, error) {
	trimmed := strings.TrimSpace(doc)
	if !gjson.Valid(trimmed) || !gjson.Parse(trimmed).IsObject() {
		return "", ErrMalformedDocument
	}
	k, err := json.Marshal(key)
	if err != nil {
		return "", err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	rest := strings.TrimSpace(trimmed[1:])
	var sb strings.Builder
	sb.Grow(len(trimmed) + len(k) + len(v) + 2)
	sb.WriteByte('{')
	sb.Write(k)
	sb.WriteByte(':')
	sb.Write(v)
	if !strings.HasPrefix(rest, "}") {
		sb.WriteByte(',')
	}
	sb.WriteString(rest)
	return sb.String(), nil
}
