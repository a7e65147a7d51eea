// internal/app/store/quotes/quotestore.go
package quotestore

import (
	"context"
	"time"

	"github.com/dalemusser/blend/internal/app/system/normalize"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("quotes")}
}

// Create inserts an unread quote.
func (s *Store) Create(ctx context.Context, q models.Quote) (models.Quote, error) {
	now := time.Now().UTC()
	q.ID = primitive.NewObjectID()
	q.Email = normalize.Email(q.Email)
	q.Read = false
	q.CreatedAt = now
	q.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, q); err != nil {
		return models.Quote{}, err
	}
	return q, nil
}

// List returns quotes newest first.
func (s *Store) List(ctx context.Context) ([]models.Quote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Quote{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRead sets the read flag and returns the updated quote.
// Returns mongo.ErrNoDocuments if missing.
func (s *Store) SetRead(ctx context.Context, id primitive.ObjectID, read bool) (models.Quote, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"read": read, "updated_at": time.Now().UTC()}}

	var q models.Quote
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&q); err != nil {
		return models.Quote{}, err
	}
	return q, nil
}

// Delete removes a quote by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
