// internal/app/store/bookings/bookingstore.go
package bookingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrBadStatus is returned for a status outside models.BookingStatuses.
	ErrBadStatus = errors.New(`status must be "pending"|"approved"|"rejected"`)
	errNoItems   = errors.New("at least one item is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("equipment_bookings")}
}

// Create inserts a booking. New bookings are always pending.
func (s *Store) Create(ctx context.Context, b models.EquipmentBooking) (models.EquipmentBooking, error) {
	if len(b.Items) == 0 {
		return models.EquipmentBooking{}, errNoItems
	}
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.Status = models.BookingPending
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.EquipmentBooking{}, err
	}
	return b, nil
}

// List returns bookings newest first. A non-empty status filters by it.
func (s *Store) List(ctx context.Context, status string) ([]models.EquipmentBooking, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.EquipmentBooking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a booking. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.EquipmentBooking, error) {
	var b models.EquipmentBooking
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return models.EquipmentBooking{}, err
	}
	return b, nil
}

// UpdateStatus sets the status from any current status and returns the
// updated booking. Returns mongo.ErrNoDocuments if missing.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.EquipmentBooking, error) {
	if !models.IsValidBookingStatus(status) {
		return models.EquipmentBooking{}, ErrBadStatus
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}

	var b models.EquipmentBooking
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&b); err != nil {
		return models.EquipmentBooking{}, err
	}
	return b, nil
}

// Delete removes a booking by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
