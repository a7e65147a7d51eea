package userstore_test

import (
	"errors"
	"strings"
	"testing"

	userstore "github.com/dalemusser/blend/internal/app/store/users"
	"github.com/dalemusser/blend/internal/app/system/indexes"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Name:        "  Jane   Doe ",
		Email:       " Jane@Example.COM ",
		PhoneNumber: "555-0100",
	}, "secret123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Jane Doe" {
		t.Errorf("Name = %q, want normalized", created.Name)
	}
	if created.Email != "jane@example.com" {
		t.Errorf("Email = %q, want lowercase", created.Email)
	}
	if created.Role != models.RoleUser {
		t.Errorf("Role = %q, want default user", created.Role)
	}
	if created.PasswordHash == "" || created.PasswordHash == "secret123" {
		t.Error("expected a bcrypt hash to be stored")
	}
	if !userstore.CheckPassword(created.PasswordHash, "secret123") {
		t.Error("CheckPassword failed for the original password")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Name: "A", Email: "dup@example.com"}, "secret123"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "B", Email: "DUP@example.com"}, "secret456")
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("second Create err = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_Create_Rejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com", Role: "owner"}, "secret123"); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com"}, ""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "Jane", Email: "jane@example.com"}, "secret123")
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByEmail(ctx, "JANE@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %v, want %v", got.ID, created.ID)
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("unknown email err = %v, want ErrNoDocuments", err)
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "Jane", Email: "jane@example.com", PhoneNumber: "1"}, "secret123")
	if err != nil {
		t.Fatal(err)
	}

	name := " Jane  Smith "
	addr := "1 Main St"
	updated, err := store.UpdateProfile(ctx, created.ID, userstore.ProfileUpdate{Name: &name, Address: &addr})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Name != "Jane Smith" {
		t.Errorf("Name = %q", updated.Name)
	}
	if updated.Address != "1 Main St" {
		t.Errorf("Address = %q", updated.Address)
	}
	if updated.PhoneNumber != "1" {
		t.Errorf("PhoneNumber changed to %q", updated.PhoneNumber)
	}

	if _, err := store.UpdateProfile(ctx, primitive.NewObjectID(), userstore.ProfileUpdate{Name: &name}); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing user err = %v, want ErrNoDocuments", err)
	}
}

func TestStore_SetPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "Jane", Email: "jane@example.com"}, "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetPassword(ctx, created.ID, "newsecret9"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if userstore.CheckPassword(got.PasswordHash, "secret123") {
		t.Error("old password still matches")
	}
	if !userstore.CheckPassword(got.PasswordHash, "newsecret9") {
		t.Error("new password does not match")
	}

	if err := store.SetPassword(ctx, primitive.NewObjectID(), "whatever1"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing user err = %v, want ErrNoDocuments", err)
	}
}

func TestStore_List_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := store.Create(ctx, models.User{Name: email, Email: email}, "secret123"); err != nil {
			t.Fatal(err)
		}
	}

	users, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].Email != "c@example.com" {
		t.Errorf("first user = %q, want newest", users[0].Email)
	}
}

func TestStore_EnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	t.Run("creates when missing", func(t *testing.T) {
		u, created, err := store.EnsureAdmin(ctx, "Boss", "boss@example.com", "adminpass1", "555")
		if err != nil {
			t.Fatalf("EnsureAdmin failed: %v", err)
		}
		if !created || u.Role != models.RoleAdmin {
			t.Errorf("created=%v role=%q, want true/admin", created, u.Role)
		}
	})

	t.Run("promotes existing user and keeps password", func(t *testing.T) {
		if _, err := store.Create(ctx, models.User{Name: "Pat", Email: "pat@example.com"}, "patpass12"); err != nil {
			t.Fatal(err)
		}
		u, created, err := store.EnsureAdmin(ctx, "", "pat@example.com", "ignored99", "")
		if err != nil {
			t.Fatalf("EnsureAdmin failed: %v", err)
		}
		if created {
			t.Error("expected promotion, not creation")
		}
		got, err := store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Role != models.RoleAdmin {
			t.Errorf("Role = %q, want admin", got.Role)
		}
		if !userstore.CheckPassword(got.PasswordHash, "patpass12") {
			t.Error("existing password was changed")
		}
	})
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	a := fixtures.CreateUser(ctx, "Ann", "ann@example.com", models.RoleUser)
	b := fixtures.CreateUser(ctx, "Bob", "bob@example.com", models.RoleAdmin)
	fixtures.CreateUser(ctx, "Cy", "cy@example.com", models.RoleUser)

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}

	empty, err := store.GetByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetByIDs(nil) = %v, %v; want empty, nil", empty, err)
	}
}

func TestHashPassword_BcryptLimit(t *testing.T) {
	if _, err := userstore.HashPassword(strings.Repeat("a", userstore.MaxPasswordBytes)); err != nil {
		t.Fatalf("72-byte password: %v", err)
	}
	if _, err := userstore.HashPassword(strings.Repeat("a", userstore.MaxPasswordBytes+1)); !errors.Is(err, userstore.ErrPasswordTooLong) {
		t.Errorf("73-byte password: err = %v, want ErrPasswordTooLong", err)
	}
}
