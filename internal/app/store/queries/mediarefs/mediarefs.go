// Package mediarefs lists the uploaded files that documents still point at.
package mediarefs

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// fields maps each collection to the field holding an upload's public path.
var fields = map[string]string{
	"team_members": "photo",
	"gallery":      "image_url",
}

// Referenced returns the set of public paths referenced by any document.
func Referenced(ctx context.Context, db *mongo.Database) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for coll, field := range fields {
		vals, err := db.Collection(coll).Distinct(ctx, field, bson.M{field: bson.M{"$type": "string", "$ne": ""}})
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			if s, ok := v.(string); ok {
				out[s] = struct{}{}
			}
		}
	}
	return out, nil
}
