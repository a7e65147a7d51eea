package teamstore_test

import (
	"errors"
	"testing"

	teamstore "github.com/dalemusser/blend/internal/app/store/team"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Ann", "Ben"} {
		if _, err := store.Create(ctx, models.TeamMember{Name: name, Role: "Planner", Bio: "bio", Photo: "/uploads/team/x.jpg"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Ann" || list[1].Name != "Ben" {
		t.Errorf("List = %+v, want Ann then Ben", list)
	}
}

func TestStore_Update_KeepsUnsetFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, models.TeamMember{
		Name: "Ann", Role: "Planner", Bio: "old bio", Photo: "/uploads/team/old.jpg",
		Socials: map[string]string{"instagram": "@ann"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Update(ctx, m.ID, teamstore.Update{Bio: "new bio"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Bio != "new bio" {
		t.Errorf("Bio = %q", got.Bio)
	}
	if got.Name != "Ann" || got.Photo != "/uploads/team/old.jpg" {
		t.Errorf("unset fields changed: %+v", got)
	}
	if got.Socials["instagram"] != "@ann" {
		t.Errorf("Socials = %v", got.Socials)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), teamstore.Update{Bio: "x"}); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing member err = %v, want ErrNoDocuments", err)
	}
}

func TestStore_Delete_ReturnsDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, models.TeamMember{Name: "Ann", Role: "Planner", Bio: "b", Photo: "/uploads/team/a.jpg"})
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := store.Delete(ctx, m.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.Photo != "/uploads/team/a.jpg" {
		t.Errorf("deleted.Photo = %q", deleted.Photo)
	}
	if _, err := store.GetByID(ctx, m.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID after delete err = %v", err)
	}
	if _, err := store.Delete(ctx, m.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("second Delete err = %v, want ErrNoDocuments", err)
	}
}
