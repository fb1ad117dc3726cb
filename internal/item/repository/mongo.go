package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/part"
	"github.com/angelodel80/cadmus-api/pkg/logger"
)

const (
	itemsCollection = "items"
	partsCollection = "parts"
)

// MongoRepo stores items and parts of one Cadmus database in the
// "items" and "parts" collections, with Pascal-initial field names.
type MongoRepo struct {
	items *mongo.Collection
	parts *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	r := &MongoRepo{
		items: db.Collection(itemsCollection),
		parts: db.Collection(partsCollection),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r.items.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "SortKey", Value: 1}}}); err != nil {
		logger.Warnf("items index on %s: %v", db.Name(), err)
	}
	// a type can occur more than once in an item only with distinct roles
	partIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "ItemId", Value: 1}, {Key: "TypeId", Value: 1}, {Key: "RoleId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.parts.Indexes().CreateOne(ctx, partIdx); err != nil {
		logger.Warnf("parts index on %s: %v", db.Name(), err)
	}
	return r
}

func itemsQuery(f *models.ItemFilter) bson.D {
	q := bson.D{}
	if f.Title != "" {
		q = append(q, bson.E{Key: "Title", Value: primitive.Regex{Pattern: regexp.QuoteMeta(f.Title), Options: "i"}})
	}
	if f.Description != "" {
		q = append(q, bson.E{Key: "Description", Value: primitive.Regex{Pattern: regexp.QuoteMeta(f.Description), Options: "i"}})
	}
	if f.FacetID != "" {
		q = append(q, bson.E{Key: "FacetId", Value: f.FacetID})
	}
	if f.Flags != 0 {
		q = append(q, bson.E{Key: "Flags", Value: bson.D{{Key: "$bitsAllSet", Value: f.Flags}}})
	}
	if f.UserID != "" {
		q = append(q, bson.E{Key: "UserId", Value: f.UserID})
	}
	return q
}

func (m *MongoRepo) GetItems(ctx context.Context, filter *models.ItemFilter) (*models.DataPage[models.ItemInfo], error) {
	f := *filter
	f.Normalize()
	q := itemsQuery(&f)

	total, err := m.items.CountDocuments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "SortKey", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Skip())).
		SetLimit(int64(f.PageSize))
	cur, err := m.items.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	page := &models.DataPage[models.ItemInfo]{PageNumber: f.PageNumber, PageSize: f.PageSize, Total: total, Items: []models.ItemInfo{}}
	if err := cur.All(ctx, &page.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return page, nil
}

func (m *MongoRepo) GetItem(ctx context.Context, id string) (*models.ItemInfo, error) {
	var it models.ItemInfo
	if err := m.items.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&it); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (m *MongoRepo) AddItem(ctx context.Context, item *models.ItemInfo) error {
	return m.putItem(ctx, item, false)
}

func (m *MongoRepo) ImportItem(ctx context.Context, item *models.ItemInfo) error {
	return m.putItem(ctx, item, true)
}

func (m *MongoRepo) putItem(ctx context.Context, item *models.ItemInfo, keepTime bool) error {
	if !keepTime || item.TimeModified.IsZero() {
		item.TimeModified = time.Now().UTC()
	}
	_, err := m.items.ReplaceOne(ctx, bson.D{{Key: "_id", Value: item.ID}}, item, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoRepo) DeleteItem(ctx context.Context, id string) error {
	res, err := m.items.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := m.parts.DeleteMany(ctx, bson.D{{Key: "ItemId", Value: id}}); err != nil {
		return fmt.Errorf("delete parts of item %s: %w", id, err)
	}
	return nil
}

func partsQuery(itemIDs []string, typeID string, roleID *string) bson.D {
	q := bson.D{}
	if len(itemIDs) > 0 {
		q = append(q, bson.E{Key: "ItemId", Value: bson.D{{Key: "$in", Value: itemIDs}}})
	}
	if typeID != "" {
		q = append(q, bson.E{Key: "TypeId", Value: typeID})
	}
	if roleID != nil {
		if *roleID == "" {
			// $in with null also matches a missing field
			q = append(q, bson.E{Key: "RoleId", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}})
		} else {
			q = append(q, bson.E{Key: "RoleId", Value: *roleID})
		}
	}
	return q
}

func (m *MongoRepo) GetItemParts(ctx context.Context, itemIDs []string, typeID string, roleID *string) ([]PartDoc, error) {
	opts := options.Find().SetSort(bson.D{{Key: "TypeId", Value: 1}, {Key: "RoleId", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := m.parts.Find(ctx, partsQuery(itemIDs, typeID, roleID), opts)
	if err != nil {
		return nil, fmt.Errorf("find parts: %w", err)
	}
	defer cur.Close(ctx)
	out := []PartDoc{}
	for cur.Next(ctx) {
		content, err := renderContent(cur.Current)
		if err != nil {
			return nil, err
		}
		out = append(out, PartDoc{Info: headerOf(content), Content: content})
	}
	return out, cur.Err()
}

func (m *MongoRepo) GetPartContent(ctx context.Context, id string) (string, error) {
	raw, err := m.parts.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", err
	}
	return renderContent(raw)
}

func (m *MongoRepo) AddPartFromContent(ctx context.Context, content string) (*part.Info, error) {
	return m.putPart(ctx, content, false)
}

func (m *MongoRepo) ImportPartFromContent(ctx context.Context, content string) (*part.Info, error) {
	return m.putPart(ctx, content, true)
}

func (m *MongoRepo) putPart(ctx context.Context, content string, keepTime bool) (*part.Info, error) {
	doc, info, err := storageDocument(content, time.Now(), keepTime)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON([]byte(doc), false, &d); err != nil {
		return nil, fmt.Errorf("part %s to bson: %w", info.ID, err)
	}
	for i := range d {
		if d[i].Key == "TimeModified" {
			d[i].Value = primitive.NewDateTimeFromTime(info.TimeModified)
		}
	}
	_, err = m.parts.ReplaceOne(ctx, bson.D{{Key: "_id", Value: info.ID}}, d, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicatePart
		}
		return nil, err
	}
	return &info, nil
}

func (m *MongoRepo) DeletePart(ctx context.Context, id string) error {
	res, err := m.parts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// renderContent turns a stored part into relaxed extended JSON with dates
// as RFC3339 strings, which is what the part types decode.
func renderContent(raw bson.Raw) (string, error) {
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return "", fmt.Errorf("decode part: %w", err)
	}
	b, err := bson.MarshalExtJSON(datesToStrings(d), false, false)
	if err != nil {
		return "", fmt.Errorf("render part: %w", err)
	}
	return string(b), nil
}

func datesToStrings(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.D:
		for i := range t {
			t[i].Value = datesToStrings(t[i].Value)
		}
		return t
	case primitive.A:
		for i := range t {
			t[i] = datesToStrings(t[i])
		}
		return t
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	}
	return v
}

// MongoFactory opens one MongoRepo per Cadmus database on a shared client.
type MongoFactory struct {
	client *mongo.Client
	mu     sync.Mutex
	repos  map[string]*MongoRepo
}

func NewMongoFactory(client *mongo.Client) *MongoFactory {
	return &MongoFactory{client: client, repos: make(map[string]*MongoRepo)}
}

func (f *MongoFactory) Repository(database string) Repository {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.repos[database]
	if !ok {
		r = NewMongoRepo(f.client.Database(database))
		f.repos[database] = r
	}
	return r
}
