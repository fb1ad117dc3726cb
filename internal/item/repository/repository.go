// Package repository stores items and parts, one logical database per
// Cadmus database name.
package repository

import (
	"context"
	"errors"

	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/part"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePart: another part of the same item already has this type
	// and role.
	ErrDuplicatePart = errors.New("part type and role already present in item")
)

// PartDoc is a stored part: its header plus the whole document in storage
// convention (Pascal-initial keys, "_id", dates as RFC3339 strings).
type PartDoc struct {
	part.Info
	Content string
}

// Repository is the storage collaborator used by the item service.
type Repository interface {
	GetItems(ctx context.Context, filter *models.ItemFilter) (*models.DataPage[models.ItemInfo], error)
	GetItem(ctx context.Context, id string) (*models.ItemInfo, error)
	// AddItem inserts or replaces the item, stamping TimeModified.
	AddItem(ctx context.Context, item *models.ItemInfo) error
	// DeleteItem removes the item and all of its parts.
	DeleteItem(ctx context.Context, id string) error

	// GetItemParts lists the parts of the given items. Empty typeID matches
	// any type; nil roleID matches any role and "" only the default role.
	GetItemParts(ctx context.Context, itemIDs []string, typeID string, roleID *string) ([]PartDoc, error)
	GetPartContent(ctx context.Context, id string) (string, error)
	// AddPartFromContent upserts a wire or storage convention part document
	// whose "id" has already been resolved.
	AddPartFromContent(ctx context.Context, content string) (*part.Info, error)
	DeletePart(ctx context.Context, id string) error

	// ImportItem and ImportPartFromContent write like AddItem and
	// AddPartFromContent but keep a TimeModified the document already has.
	// Restoring backups uses them.
	ImportItem(ctx context.Context, item *models.ItemInfo) error
	ImportPartFromContent(ctx context.Context, content string) (*part.Info, error)
}

// Factory hands out the repository of a database.
type Factory interface {
	Repository(database string) Repository
}
