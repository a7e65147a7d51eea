package gallerystore_test

import (
	"errors"
	"testing"

	gallerystore "github.com/dalemusser/blend/internal/app/store/gallery"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := gallerystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Create(ctx, models.GalleryItem{Title: "Tent", ImageURL: "/uploads/gallery/a.jpg"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.GalleryItem{Title: "Stage", ImageURL: "/uploads/gallery/b.jpg"}); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Stage" {
		t.Errorf("List = %+v, want newest first", list)
	}

	updated, err := store.Update(ctx, first.ID, gallerystore.Update{ImageURL: "/uploads/gallery/c.jpg"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Tent" || updated.ImageURL != "/uploads/gallery/c.jpg" {
		t.Errorf("updated = %+v", updated)
	}

	deleted, err := store.Delete(ctx, first.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.ImageURL != "/uploads/gallery/c.jpg" {
		t.Errorf("deleted.ImageURL = %q", deleted.ImageURL)
	}
	if _, err := store.GetByID(ctx, first.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID after delete err = %v", err)
	}
}
