// internal/app/store/equipment/equipmentstore.go
package equipmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/blend/internal/app/system/normalize"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNegativeQuantity = errors.New("quantity must be >= 0")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("equipment")}
}

// Create inserts a catalog entry, setting NameCI and timestamps.
func (s *Store) Create(ctx context.Context, e models.Equipment) (models.Equipment, error) {
	if e.Quantity < 0 {
		return models.Equipment{}, errNegativeQuantity
	}
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.Name = normalize.Name(e.Name)
	e.NameCI = normalize.SortKey(e.Name)
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Equipment{}, err
	}
	return e, nil
}

// List returns the catalog ordered by folded name.
func (s *Store) List(ctx context.Context) ([]models.Equipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Equipment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a catalog entry. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Equipment, error) {
	var e models.Equipment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Equipment{}, err
	}
	return e, nil
}

// Update overwrites all mutable fields and returns the updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, e models.Equipment) (models.Equipment, error) {
	if e.Quantity < 0 {
		return models.Equipment{}, errNegativeQuantity
	}
	name := normalize.Name(e.Name)
	set := bson.M{
		"name":        name,
		"name_ci":     normalize.SortKey(name),
		"category":    e.Category,
		"description": e.Description,
		"quantity":    e.Quantity,
		"updated_at":  time.Now().UTC(),
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Equipment
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out); err != nil {
		return models.Equipment{}, err
	}
	return out, nil
}

// Delete removes a catalog entry. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
