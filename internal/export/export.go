// Package export writes a database as JSON Lines, one item with its parts
// per line, and restores it.
package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/angelodel80/cadmus-api/internal/docjson"
	"github.com/angelodel80/cadmus-api/internal/item/repository"
	"github.com/angelodel80/cadmus-api/internal/models"
)

// Uploader stores a backup object; *storage.BackupStore implements it.
type Uploader interface {
	Put(ctx context.Context, key, database string, items int, body io.Reader, size int64) error
}

// Record is one line of a backup. Parts are in the wire convention.
type Record struct {
	Item  models.ItemInfo   `json:"item"`
	Parts []json.RawMessage `json:"parts"`
}

// Write streams every item of repo, ordered by sort key, to w and returns
// the number of items written.
func Write(ctx context.Context, repo repository.Repository, w io.Writer) (int, error) {
	enc := json.NewEncoder(w)
	count := 0
	filter := &models.ItemFilter{PageNumber: 1, PageSize: models.MaxPageSize}
	for {
		page, err := repo.GetItems(ctx, filter)
		if err != nil {
			return count, fmt.Errorf("items page %d: %w", filter.PageNumber, err)
		}
		for _, it := range page.Items {
			parts, err := repo.GetItemParts(ctx, []string{it.ID}, "", nil)
			if err != nil {
				return count, fmt.Errorf("parts of %s: %w", it.ID, err)
			}
			rec := Record{Item: it, Parts: make([]json.RawMessage, 0, len(parts))}
			for _, p := range parts {
				wire, err := docjson.ToWire(p.Content)
				if err != nil {
					return count, fmt.Errorf("part %s: %w", p.ID, err)
				}
				rec.Parts = append(rec.Parts, json.RawMessage(wire))
			}
			if err := enc.Encode(&rec); err != nil {
				return count, err
			}
			count++
		}
		if int64(filter.PageNumber*filter.PageSize) >= page.Total || len(page.Items) == 0 {
			return count, nil
		}
		filter.PageNumber++
	}
}

// ObjectKey names the backup of database taken at t.
func ObjectKey(prefix, database string, t time.Time) string {
	return fmt.Sprintf("%s%s-%s.jsonl", prefix, database, t.UTC().Format("20060102T150405Z"))
}

// Export writes database to a new object and returns its key and item count.
func Export(ctx context.Context, repo repository.Repository, up Uploader, prefix, database string, now time.Time) (string, int, error) {
	var buf bytes.Buffer
	n, err := Write(ctx, repo, &buf)
	if err != nil {
		return "", n, err
	}
	key := ObjectKey(prefix, database, now)
	if err := up.Put(ctx, key, database, n, &buf, int64(buf.Len())); err != nil {
		return "", n, fmt.Errorf("upload %s: %w", key, err)
	}
	return key, n, nil
}

// Restore reads a backup and upserts its items and parts into repo.
// It returns the number of items and parts written.
func Restore(ctx context.Context, repo repository.Repository, r io.Reader) (int, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	items, parts := 0, 0
	line := 0
	for sc.Scan() {
		line++
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return items, parts, fmt.Errorf("line %d: %w", line, err)
		}
		if err := repo.ImportItem(ctx, &rec.Item); err != nil {
			return items, parts, fmt.Errorf("line %d item %s: %w", line, rec.Item.ID, err)
		}
		items++
		for _, p := range rec.Parts {
			if _, err := repo.ImportPartFromContent(ctx, string(p)); err != nil {
				return items, parts, fmt.Errorf("line %d part: %w", line, err)
			}
			parts++
		}
	}
	return items, parts, sc.Err()
}
