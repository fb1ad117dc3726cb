package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/angelodel80/cadmus-api/internal/docjson"
	"github.com/angelodel80/cadmus-api/internal/identity"
	"github.com/angelodel80/cadmus-api/internal/item/repository"
	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/part"
	"github.com/angelodel80/cadmus-api/pkg/logger"
	"github.com/angelodel80/cadmus-api/pkg/metrics"
)

// DefaultRole is the role path segment standing for "no role".
const DefaultRole = "default"

// Service defines the item and part operations used by the handler layer.
type Service interface {
	GetItems(ctx context.Context, database string, filter *models.ItemFilter) (*models.DataPage[models.ItemInfo], error)
	GetItem(ctx context.Context, database, id string, withParts bool) (*models.Item, error)
	GetPart(ctx context.Context, database, id string) (json.RawMessage, error)
	GetPartFromTypeAndRole(ctx context.Context, database, itemID, typeID, roleID string) (json.RawMessage, error)
	GetItemLayers(ctx context.Context, database, itemID string) ([]part.LayerRef, error)
	GetPartPins(ctx context.Context, database, id string) ([]part.Pin, error)
	AddItem(ctx context.Context, database string, rec *models.ItemRecord, caller string) (*models.ItemInfo, bool, error)
	AddPart(ctx context.Context, database, raw, caller string) (*identity.Prepared, error)
	DeleteItem(ctx context.Context, database, id, caller string) error
	DeletePart(ctx context.Context, database, id, caller string) error
}

// PinCache memoizes pins by stored content. Implementations are best-effort:
// errors are logged and pins recomputed.
type PinCache interface {
	Get(ctx context.Context, content string) ([]part.Pin, bool, error)
	Set(ctx context.Context, content string, pins []part.Pin) error
}

// NewService wires the service. cache may be nil.
func NewService(repos repository.Factory, registry *part.Registry, cache PinCache) Service {
	return &itemService{repos: repos, registry: registry, cache: cache}
}

// NewMemoryService returns a Service backed by in-memory repositories and
// the default part catalog.
func NewMemoryService() Service {
	return NewService(repository.NewMemoryFactory(), part.DefaultRegistry(), nil)
}

type itemService struct {
	repos    repository.Factory
	registry *part.Registry
	cache    PinCache
}

func (s *itemService) GetItems(ctx context.Context, database string, filter *models.ItemFilter) (*models.DataPage[models.ItemInfo], error) {
	return s.repos.Repository(database).GetItems(ctx, filter)
}

func (s *itemService) GetItem(ctx context.Context, database, id string, withParts bool) (*models.Item, error) {
	repo := s.repos.Repository(database)
	info, err := repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item := &models.Item{ItemInfo: *info}
	if !withParts {
		return item, nil
	}
	parts, err := repo.GetItemParts(ctx, []string{id}, "", nil)
	if err != nil {
		return nil, err
	}
	item.Parts = make([]json.RawMessage, 0, len(parts))
	for _, p := range parts {
		wire, err := docjson.ToWire(p.Content)
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", p.ID, err)
		}
		item.Parts = append(item.Parts, json.RawMessage(wire))
	}
	return item, nil
}

func (s *itemService) GetPart(ctx context.Context, database, id string) (json.RawMessage, error) {
	content, err := s.repos.Repository(database).GetPartContent(ctx, id)
	if err != nil {
		return nil, err
	}
	wire, err := docjson.ToWire(content)
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", id, err)
	}
	return json.RawMessage(wire), nil
}

func (s *itemService) GetPartFromTypeAndRole(ctx context.Context, database, itemID, typeID, roleID string) (json.RawMessage, error) {
	if roleID == DefaultRole {
		roleID = ""
	}
	parts, err := s.repos.Repository(database).GetItemParts(ctx, []string{itemID}, typeID, &roleID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, repository.ErrNotFound
	}
	wire, err := docjson.ToWire(parts[0].Content)
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", parts[0].ID, err)
	}
	return json.RawMessage(wire), nil
}

func (s *itemService) GetItemLayers(ctx context.Context, database, itemID string) ([]part.LayerRef, error) {
	parts, err := s.repos.Repository(database).GetItemParts(ctx, []string{itemID}, "", nil)
	if err != nil {
		return nil, err
	}
	infos := make([]part.Info, len(parts))
	for i, p := range parts {
		infos[i] = p.Info
	}
	return s.registry.IndexLayers(infos), nil
}

func (s *itemService) GetPartPins(ctx context.Context, database, id string) ([]part.Pin, error) {
	content, err := s.repos.Repository(database).GetPartContent(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		pins, ok, err := s.cache.Get(ctx, content)
		if err != nil {
			logger.Warnf("pin cache get for part %s: %v", id, err)
		} else if ok {
			metrics.PinExtractions.WithLabelValues(metrics.PinCached).Inc()
			return pins, nil
		}
	}

	pins, err := s.registry.ExtractPins(content)
	if err != nil {
		log := logger.WithFields(map[string]interface{}{"database": database, "part": id})
		switch {
		case errors.Is(err, part.ErrMissingTypeID):
			metrics.PinExtractions.WithLabelValues(metrics.PinMissingType).Inc()
			log.Warnf("pins: %v", err)
		case errors.Is(err, part.ErrUnknownPartType):
			metrics.PinExtractions.WithLabelValues(metrics.PinUnknownType).Inc()
			// stored data references a type this server does not know
			log.Errorf("pins: %v", err)
		case errors.Is(err, part.ErrMalformedPart):
			metrics.PinExtractions.WithLabelValues(metrics.PinMalformed).Inc()
			log.Warnf("pins: %v", err)
		}
		return nil, err
	}
	metrics.PinExtractions.WithLabelValues(metrics.PinComputed).Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, content, pins); err != nil {
			logger.Warnf("pin cache set for part %s: %v", id, err)
		}
	}
	return pins, nil
}

func (s *itemService) AddItem(ctx context.Context, database string, rec *models.ItemRecord, caller string) (*models.ItemInfo, bool, error) {
	id, isNew := identity.ResolveItemID(rec.ID)
	item := &models.ItemInfo{
		ID:          id,
		Title:       rec.Title,
		Description: rec.Description,
		FacetID:     rec.FacetID,
		SortKey:     rec.SortKey,
		Flags:       rec.Flags,
		UserID:      caller,
	}
	if err := s.repos.Repository(database).AddItem(ctx, item); err != nil {
		return nil, false, err
	}
	metrics.ItemWrites.WithLabelValues(writeResult(isNew)).Inc()
	logger.Debugf("item %s saved in %s by %q (new=%t)", id, database, caller, isNew)
	return item, isNew, nil
}

func (s *itemService) AddPart(ctx context.Context, database, raw, caller string) (*identity.Prepared, error) {
	p, err := identity.PrepareForUpsert(raw, caller)
	if err != nil {
		metrics.PartWrites.WithLabelValues("rejected").Inc()
		return nil, err
	}
	for _, key := range []string{"itemId", "typeId"} {
		if v := gjson.Get(p.Doc, key); v.Type != gjson.String || v.Str == "" {
			metrics.PartWrites.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("%w: %s is required", docjson.ErrMalformedDocument, key)
		}
	}
	if _, err := s.repos.Repository(database).AddPartFromContent(ctx, p.Doc); err != nil {
		metrics.PartWrites.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.PartWrites.WithLabelValues(writeResult(p.IsNew)).Inc()
	logger.Debugf("part %s saved in %s by %q (new=%t)", p.ID, database, caller, p.IsNew)
	return p, nil
}

func (s *itemService) DeleteItem(ctx context.Context, database, id, caller string) error {
	if err := s.repos.Repository(database).DeleteItem(ctx, id); err != nil {
		return err
	}
	logger.Infof("item %s deleted from %s by %q", id, database, caller)
	return nil
}

func (s *itemService) DeletePart(ctx context.Context, database, id, caller string) error {
	if err := s.repos.Repository(database).DeletePart(ctx, id); err != nil {
		return err
	}
	logger.Infof("part %s deleted from %s by %q", id, database, caller)
	return nil
}

func writeResult(isNew bool) string {
	if isNew {
		return "created"
	}
	return "updated"
}
