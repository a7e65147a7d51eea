package mediarefs

import (
	"testing"

	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReferenced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	docs := map[string][]any{
		"team_members": {
			bson.M{"name": "A", "photo": "/uploads/team/a.png"},
			bson.M{"name": "B", "photo": ""},
		},
		"gallery": {
			bson.M{"title": "G", "image_url": "/uploads/gallery/g.jpg"},
			bson.M{"title": "H", "image_url": "/uploads/gallery/g.jpg"},
		},
	}
	for coll, rows := range docs {
		if _, err := db.Collection(coll).InsertMany(ctx, rows); err != nil {
			t.Fatalf("insert %s: %v", coll, err)
		}
	}

	refs, err := Referenced(ctx, db)
	if err != nil {
		t.Fatalf("Referenced: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 paths, got %v", refs)
	}
	for _, p := range []string{"/uploads/team/a.png", "/uploads/gallery/g.jpg"} {
		if _, ok := refs[p]; !ok {
			t.Errorf("missing %s", p)
		}
	}
}
