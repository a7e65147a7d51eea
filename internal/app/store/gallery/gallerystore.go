// internal/app/store/gallery/gallerystore.go
package gallerystore

import (
	"context"
	"time"

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
	return &Store{c: db.Collection("gallery")}
}

// Create inserts a gallery item, setting ID and timestamps.
func (s *Store) Create(ctx context.Context, g models.GalleryItem) (models.GalleryItem, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.GalleryItem{}, err
	}
	return g, nil
}

// List returns gallery items newest first.
func (s *Store) List(ctx context.Context) ([]models.GalleryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.GalleryItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a gallery item. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GalleryItem, error) {
	var g models.GalleryItem
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.GalleryItem{}, err
	}
	return g, nil
}

// Update holds overwrite values; empty strings are ignored.
type Update struct {
	Title       string
	Description string
	ImageURL    string
}

// Update applies upd and returns the updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.GalleryItem, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != "" {
		set["title"] = upd.Title
	}
	if upd.Description != "" {
		set["description"] = upd.Description
	}
	if upd.ImageURL != "" {
		set["image_url"] = upd.ImageURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var g models.GalleryItem
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&g); err != nil {
		return models.GalleryItem{}, err
	}
	return g, nil
}

// Delete removes an item and returns it. Returns mongo.ErrNoDocuments if missing.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.GalleryItem, error) {
	var g models.GalleryItem
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.GalleryItem{}, err
	}
	return g, nil
}
