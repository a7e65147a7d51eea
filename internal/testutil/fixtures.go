package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser inserts a user without a usable password.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Email:       email,
		PhoneNumber: "555-0100",
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "users", user)
	return user
}

// CreateQuote inserts a quote with the given creation time.
func (f *Fixtures) CreateQuote(ctx context.Context, fullName string, createdAt time.Time) models.Quote {
	f.t.Helper()

	q := models.Quote{
		ID:          primitive.NewObjectID(),
		FullName:    fullName,
		Email:       "guest@example.com",
		PhoneNumber: "555-0101",
		EventType:   "Wedding",
		EventDate:   createdAt.AddDate(0, 1, 0),
		Guests:      80,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	f.insert(ctx, "quotes", q)
	return q
}

// CreateMessage inserts a contact message with the given creation time.
func (f *Fixtures) CreateMessage(ctx context.Context, subject string, createdAt time.Time) models.Message {
	f.t.Helper()

	m := models.Message{
		ID:        primitive.NewObjectID(),
		FullName:  "Visitor",
		Email:     "visitor@example.com",
		Subject:   subject,
		Body:      "Hello there",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	f.insert(ctx, "messages", m)
	return m
}

// CreateBooking inserts an equipment booking with the given status, items and
// creation time.
func (f *Fixtures) CreateBooking(ctx context.Context, status string, createdAt time.Time, items ...models.BookingItem) models.EquipmentBooking {
	f.t.Helper()

	if len(items) == 0 {
		items = []models.BookingItem{{ID: "eq1", Name: "Chair", Quantity: 4}}
	}
	b := models.EquipmentBooking{
		ID:        primitive.NewObjectID(),
		FullName:  "Booker",
		Phone:     "555-0102",
		Location:  "Main Hall",
		Date:      createdAt.AddDate(0, 0, 14),
		Items:     items,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	f.insert(ctx, "equipment_bookings", b)
	return b
}

// CreateEquipment inserts a catalog entry.
func (f *Fixtures) CreateEquipment(ctx context.Context, name string, quantity int) models.Equipment {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Equipment{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Category:  "Furniture",
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "equipment", e)
	return e
}
