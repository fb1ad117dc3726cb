package export

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Backup records one export object.
type Backup struct {
	Key       string    `bson:"_id" json:"key"`
	Database  string    `bson:"Database" json:"database"`
	Items     int       `bson:"Items" json:"items"`
	CreatedAt time.Time `bson:"CreatedAt" json:"createdAt"`
}

// Journal keeps track of the backups taken, newest first.
type Journal interface {
	Save(ctx context.Context, b *Backup) error
	List(ctx context.Context, database string) ([]Backup, error)
}

// MongoJournal stores backups in the "backups" collection.
type MongoJournal struct {
	col *mongo.Collection
}

func NewMongoJournal(db *mongo.Database) *MongoJournal {
	return &MongoJournal{col: db.Collection("backups")}
}

// Save upserts b by key.
func (j *MongoJournal) Save(ctx context.Context, b *Backup) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := j.col.ReplaceOne(ctx, bson.M{"_id": b.Key}, b, opts); err != nil {
		return fmt.Errorf("save backup %s: %w", b.Key, err)
	}
	return nil
}

// List returns the backups of database, or of every database when empty.
func (j *MongoJournal) List(ctx context.Context, database string) ([]Backup, error) {
	filter := bson.M{}
	if database != "" {
		filter["Database"] = database
	}
	cur, err := j.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "CreatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []Backup
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MemoryJournal is a Journal for tests and storage-less runs.
type MemoryJournal struct {
	mu      sync.Mutex
	backups map[string]Backup
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{backups: map[string]Backup{}}
}

func (j *MemoryJournal) Save(_ context.Context, b *Backup) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.backups[b.Key] = *b
	return nil
}

func (j *MemoryJournal) List(_ context.Context, database string) ([]Backup, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Backup
	for _, b := range j.backups {
		if database == "" || b.Database == database {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}
