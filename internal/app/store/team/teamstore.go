// internal/app/store/team/teamstore.go
package teamstore

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
	return &Store{c: db.Collection("team_members")}
}

// Create inserts a team member, setting ID and timestamps.
func (s *Store) Create(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.Name = normalize.Name(m.Name)
	m.Role = normalize.Name(m.Role)
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.TeamMember{}, err
	}
	return m, nil
}

// List returns team members in the order they were added.
func (s *Store) List(ctx context.Context) ([]models.TeamMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.TeamMember{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a team member. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.TeamMember, error) {
	var m models.TeamMember
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.TeamMember{}, err
	}
	return m, nil
}

// Update holds overwrite values. Empty strings and a nil Socials map leave
// the stored value unchanged.
type Update struct {
	Name    string
	Role    string
	Bio     string
	Photo   string
	Socials map[string]string
}

// Update applies upd and returns the updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.TeamMember, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if v := normalize.Name(upd.Name); v != "" {
		set["name"] = v
	}
	if v := normalize.Name(upd.Role); v != "" {
		set["role"] = v
	}
	if upd.Bio != "" {
		set["bio"] = upd.Bio
	}
	if upd.Photo != "" {
		set["photo"] = upd.Photo
	}
	if upd.Socials != nil {
		set["socials"] = upd.Socials
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.TeamMember
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&m); err != nil {
		return models.TeamMember{}, err
	}
	return m, nil
}

// Delete removes a team member and returns the removed document so the
// caller can clean up its photo. Returns mongo.ErrNoDocuments if missing.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.TeamMember, error) {
	var m models.TeamMember
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.TeamMember{}, err
	}
	return m, nil
}
