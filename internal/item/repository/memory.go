package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/part"
)

// MemoryRepo is an in-memory repository used when MongoDB is not configured
// and in unit tests. Parts are kept in the same storage shape as in Mongo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]models.ItemInfo
	parts map[string]PartDoc
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items: make(map[string]models.ItemInfo),
		parts: make(map[string]PartDoc),
		now:   time.Now,
	}
}

func (m *MemoryRepo) GetItems(_ context.Context, filter *models.ItemFilter) (*models.DataPage[models.ItemInfo], error) {
	f := *filter
	f.Normalize()

	m.mu.RLock()
	matched := make([]models.ItemInfo, 0, len(m.items))
	for _, it := range m.items {
		if matchesItem(it, &f) {
			matched = append(matched, it)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SortKey != matched[j].SortKey {
			return matched[i].SortKey < matched[j].SortKey
		}
		return matched[i].ID < matched[j].ID
	})
	page := &models.DataPage[models.ItemInfo]{
		PageNumber: f.PageNumber,
		PageSize:   f.PageSize,
		Total:      int64(len(matched)),
		Items:      []models.ItemInfo{},
	}
	if skip := f.Skip(); skip < len(matched) {
		end := min(skip+f.PageSize, len(matched))
		page.Items = matched[skip:end]
	}
	return page, nil
}

func matchesItem(it models.ItemInfo, f *models.ItemFilter) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Description != "" && !strings.Contains(strings.ToLower(it.Description), strings.ToLower(f.Description)) {
		return false
	}
	if f.FacetID != "" && it.FacetID != f.FacetID {
		return false
	}
	if f.Flags != 0 && it.Flags&f.Flags != f.Flags {
		return false
	}
	if f.UserID != "" && it.UserID != f.UserID {
		return false
	}
	return true
}

func (m *MemoryRepo) GetItem(_ context.Context, id string) (*models.ItemInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if it, ok := m.items[id]; ok {
		return &it, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) AddItem(_ context.Context, item *models.ItemInfo) error {
	return m.putItem(item, false)
}

func (m *MemoryRepo) ImportItem(_ context.Context, item *models.ItemInfo) error {
	return m.putItem(item, true)
}

func (m *MemoryRepo) putItem(item *models.ItemInfo, keepTime bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !keepTime || item.TimeModified.IsZero() {
		item.TimeModified = m.now().UTC()
	}
	m.items[item.ID] = *item
	return nil
}

func (m *MemoryRepo) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	for pid, p := range m.parts {
		if p.ItemID == id {
			delete(m.parts, pid)
		}
	}
	return nil
}

func (m *MemoryRepo) GetItemParts(_ context.Context, itemIDs []string, typeID string, roleID *string) ([]PartDoc, error) {
	m.mu.RLock()
	out := []PartDoc{}
	for _, p := range m.parts {
		if matchesPart(p.Info, itemIDs, typeID, roleID) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()
	sortParts(out)
	return out, nil
}

func sortParts(parts []PartDoc) {
	sort.Slice(parts, func(i, j int) bool {
		a, b := parts[i], parts[j]
		if a.TypeID != b.TypeID {
			return a.TypeID < b.TypeID
		}
		if a.RoleID != b.RoleID {
			return a.RoleID < b.RoleID
		}
		return a.ID < b.ID
	})
}

func (m *MemoryRepo) GetPartContent(_ context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.parts[id]; ok {
		return p.Content, nil
	}
	return "", ErrNotFound
}

func (m *MemoryRepo) AddPartFromContent(_ context.Context, content string) (*part.Info, error) {
	return m.putPart(content, false)
}

func (m *MemoryRepo) ImportPartFromContent(_ context.Context, content string) (*part.Info, error) {
	return m.putPart(content, true)
}

func (m *MemoryRepo) putPart(content string, keepTime bool) (*part.Info, error) {
	doc, info, err := storageDocument(content, m.now(), keepTime)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.parts {
		if id != info.ID && p.ItemID == info.ItemID && p.TypeID == info.TypeID && p.RoleID == info.RoleID {
			return nil, ErrDuplicatePart
		}
	}
	m.parts[info.ID] = PartDoc{Info: info, Content: doc}
	return &info, nil
}

func (m *MemoryRepo) DeletePart(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parts[id]; !ok {
		return ErrNotFound
	}
	delete(m.parts, id)
	return nil
}

// MemoryFactory keeps one MemoryRepo per database name.
type MemoryFactory struct {
	mu    sync.Mutex
	repos map[string]*MemoryRepo
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{repos: make(map[string]*MemoryRepo)}
}

func (f *MemoryFactory) Repository(database string) Repository {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.repos[database]
	if !ok {
		r = NewMemoryRepo()
		f.repos[database] = r
	}
	return r
}
