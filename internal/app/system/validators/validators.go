// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/blend/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("team_members", teamMembersSchema())
	ensure("gallery", gallerySchema())
	ensure("quotes", quotesSchema())
	ensure("messages", messagesSchema())
	ensure("equipment", equipmentSchema())
	ensure("equipment_bookings", bookingsSchema())

	// Written only by the audit logger; no validator needed.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// nonBlank matches a string with at least one non-space character.
func nonBlank() bson.M {
	return bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
}

func intAtLeast(min int) bson.M {
	return bson.M{"bsonType": bson.A{"int", "long"}, "minimum": min}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash", "role"},
			"properties": bson.M{
				"name":          nonBlank(),
				"email":         nonBlank(),
				"password_hash": nonBlank(),
				"phone_number":  bson.M{"bsonType": "string"},
				"address":       bson.M{"bsonType": "string"},
				"role":          bson.M{"enum": bson.A{models.RoleUser, models.RoleAdmin}},
			},
		},
	}
}

func teamMembersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "role", "photo"},
			"properties": bson.M{
				"name":    nonBlank(),
				"role":    nonBlank(),
				"bio":     bson.M{"bsonType": "string"},
				"photo":   nonBlank(),
				"socials": bson.M{"bsonType": bson.A{"object", "null"}},
			},
		},
	}
}

func gallerySchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "image_url"},
			"properties": bson.M{
				"title":       nonBlank(),
				"description": bson.M{"bsonType": "string"},
				"image_url":   nonBlank(),
			},
		},
	}
}

func quotesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "email", "phone_number", "event_type", "event_date", "guests"},
			"properties": bson.M{
				"full_name":    nonBlank(),
				"email":        nonBlank(),
				"phone_number": nonBlank(),
				"event_type":   nonBlank(),
				"event_date":   bson.M{"bsonType": "date"},
				"guests":       intAtLeast(1),
				"read":         bson.M{"bsonType": "bool"},
			},
		},
	}
}

func messagesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "email", "subject", "message"},
			"properties": bson.M{
				"full_name": nonBlank(),
				"email":     nonBlank(),
				"subject":   nonBlank(),
				"message":   nonBlank(),
			},
		},
	}
}

func equipmentSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "quantity"},
			"properties": bson.M{
				"name":     nonBlank(),
				"name_ci":  nonBlank(),
				"category": bson.M{"bsonType": "string"},
				"quantity": intAtLeast(0),
			},
		},
	}
}

func bookingsSchema() bson.M {
	statusEnum := bson.A{}
	for _, s := range models.BookingStatuses {
		statusEnum = append(statusEnum, s)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "phone", "location", "date", "items", "status"},
			"properties": bson.M{
				"full_name": nonBlank(),
				"phone":     nonBlank(),
				"location":  nonBlank(),
				"date":      bson.M{"bsonType": "date"},
				"status":    bson.M{"enum": statusEnum},
				"items": bson.M{
					"bsonType": "array",
					"minItems": 1,
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"id", "name", "quantity"},
						"properties": bson.M{
							"id":       nonBlank(),
							"name":     nonBlank(),
							"quantity": intAtLeast(1),
						},
					},
				},
			},
		},
	}
}
