package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelodel80/cadmus-api/internal/models"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	// UpsertByUserName creates the user or refreshes its profile fields.
	UpsertByUserName(ctx context.Context, u *models.User) (*models.User, error)
	// InsertIfMissing creates u only when no user has its name, reporting
	// whether it did.
	InsertIfMissing(ctx context.Context, u *models.User) (bool, error)
	AddRole(ctx context.Context, userName, role string) error
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	idx := mongo.IndexModel{Keys: bson.D{{Key: "UserName", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(ctx, idx)
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) UpsertByUserName(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	set := bson.D{
		{Key: "Email", Value: u.Email},
		{Key: "FirstName", Value: u.FirstName},
		{Key: "LastName", Value: u.LastName},
		{Key: "UpdatedAt", Value: now},
	}
	if len(u.Roles) > 0 {
		set = append(set, bson.E{Key: "Roles", Value: u.Roles})
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: "CreatedAt", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "UserName", Value: u.UserName}}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Shouldn't happen because of upsert, but handle gracefully
			return u, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoUserRepository) InsertIfMissing(ctx context.Context, u *models.User) (bool, error) {
	now := time.Now().UTC()
	doc := bson.D{
		{Key: "UserName", Value: u.UserName},
		{Key: "Email", Value: u.Email},
		{Key: "FirstName", Value: u.FirstName},
		{Key: "LastName", Value: u.LastName},
		{Key: "Roles", Value: u.Roles},
		{Key: "CreatedAt", Value: now},
		{Key: "UpdatedAt", Value: now},
	}
	res, err := r.col.UpdateOne(ctx, bson.D{{Key: "UserName", Value: u.UserName}},
		bson.D{{Key: "$setOnInsert", Value: doc}}, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (r *MongoUserRepository) AddRole(ctx context.Context, userName, role string) error {
	_, err := r.col.UpdateOne(ctx, bson.D{{Key: "UserName", Value: userName}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "Roles", Value: role}}}})
	return err
}

func (r *MongoUserRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.D{{Key: "UserName", Value: userName}}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// MemoryUserRepository keeps users in memory, for runs without MongoDB.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) UpsertByUserName(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := r.users[u.UserName]
	if !ok {
		cur = models.User{ID: u.UserName, UserName: u.UserName, CreatedAt: now}
	}
	cur.Email, cur.FirstName, cur.LastName, cur.UpdatedAt = u.Email, u.FirstName, u.LastName, now
	if len(u.Roles) > 0 {
		cur.Roles = append([]string(nil), u.Roles...)
	}
	r.users[u.UserName] = cur
	return &cur, nil
}

func (r *MemoryUserRepository) InsertIfMissing(_ context.Context, u *models.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UserName]; ok {
		return false, nil
	}
	now := time.Now().UTC()
	nu := *u
	nu.ID, nu.CreatedAt, nu.UpdatedAt = u.UserName, now, now
	nu.Roles = append([]string(nil), u.Roles...)
	r.users[u.UserName] = nu
	return true, nil
}

func (r *MemoryUserRepository) AddRole(_ context.Context, userName, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userName]
	if !ok {
		return nil
	}
	for _, have := range u.Roles {
		if have == role {
			return nil
		}
	}
	u.Roles = append(u.Roles, role)
	r.users[userName] = u
	return nil
}

func (r *MemoryUserRepository) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userName]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
