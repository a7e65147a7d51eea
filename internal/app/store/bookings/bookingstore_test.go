package bookingstore_test

import (
	"errors"
	"testing"
	"time"

	bookingstore "github.com/dalemusser/blend/internal/app/store/bookings"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newBooking() models.EquipmentBooking {
	return models.EquipmentBooking{
		FullName: "Jane",
		Phone:    "555",
		Location: "Hall",
		Date:     time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		Items:    []models.BookingItem{{ID: "eq1", Name: "Chair", Quantity: 4}},
		Status:   models.BookingApproved,
	}
}

func TestStore_Create_AlwaysPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, newBooking())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.Status != models.BookingPending {
		t.Errorf("Status = %q, want pending", b.Status)
	}

	got, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0] != (models.BookingItem{ID: "eq1", Name: "Chair", Quantity: 4}) {
		t.Errorf("Items = %+v", got.Items)
	}
}

func TestStore_Create_RequiresItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := newBooking()
	b.Items = nil
	if _, err := store.Create(ctx, b); err == nil {
		t.Error("expected error for empty items")
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, newBooking())
	if err != nil {
		t.Fatal(err)
	}

	// Any status may follow any other.
	for _, status := range []string{models.BookingApproved, models.BookingRejected, models.BookingPending} {
		got, err := store.UpdateStatus(ctx, b.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s) failed: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("Status = %q, want %q", got.Status, status)
		}
	}

	if _, err := store.UpdateStatus(ctx, b.ID, "cancelled"); !errors.Is(err, bookingstore.ErrBadStatus) {
		t.Errorf("bad status err = %v", err)
	}
	if _, err := store.UpdateStatus(ctx, primitive.NewObjectID(), models.BookingApproved); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing booking err = %v", err)
	}
}

func TestStore_List_StatusFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, newBooking())
	if _, err := store.Create(ctx, newBooking()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpdateStatus(ctx, a.ID, models.BookingApproved); err != nil {
		t.Fatal(err)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List all = %d, want 2", len(all))
	}
	approved, err := store.List(ctx, models.BookingApproved)
	if err != nil {
		t.Fatal(err)
	}
	if len(approved) != 1 || approved[0].ID != a.ID {
		t.Errorf("approved = %+v", approved)
	}
}
