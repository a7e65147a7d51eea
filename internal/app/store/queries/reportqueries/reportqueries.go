// Package reportqueries provides the read-only aggregations behind the
// admin reports.
package reportqueries

import (
	"context"

	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collections that support per-day counts.
const (
	CollQuotes   = "quotes"
	CollMessages = "messages"
	CollBookings = "equipment_bookings"
)

// CountsByDay groups documents in coll created within rg by UTC calendar
// day and returns the counts in ascending date order.
func CountsByDay(ctx context.Context, db *mongo.Database, coll string, rg dateparam.Range) ([]models.DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: rg.Filter("created_at")}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$created_at",
				"timezone": "UTC",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.DayCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EquipmentUsage totals booked quantity per equipment name across bookings
// created within rg. Bookings counts distinct bookings naming the item.
// Rows are sorted by quantity descending, then name.
func EquipmentUsage(ctx context.Context, db *mongo.Database, rg dateparam.Range) ([]models.EquipmentUsage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: rg.Filter("created_at")}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.name",
			"ids":      bson.M{"$addToSet": "$_id"},
			"quantity": bson.M{"$sum": "$items.quantity"},
		}}},
		{{Key: "$project", Value: bson.M{
			"bookings": bson.M{"$size": "$ids"},
			"quantity": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "quantity", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := db.Collection(CollBookings).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.EquipmentUsage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary counts quotes, messages and bookings created within rg, plus
// bookings per status. Every known status is present in the map.
func Summary(ctx context.Context, db *mongo.Database, rg dateparam.Range) (models.ReportSummary, error) {
	filter := rg.Filter("created_at")
	var sum models.ReportSummary
	var err error

	if sum.Quotes, err = db.Collection(CollQuotes).CountDocuments(ctx, filter); err != nil {
		return models.ReportSummary{}, err
	}
	if sum.Messages, err = db.Collection(CollMessages).CountDocuments(ctx, filter); err != nil {
		return models.ReportSummary{}, err
	}

	sum.BookingsByStatus = make(map[string]int64, len(models.BookingStatuses))
	for _, s := range models.BookingStatuses {
		sum.BookingsByStatus[s] = 0
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := db.Collection(CollBookings).Aggregate(ctx, pipeline)
	if err != nil {
		return models.ReportSummary{}, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return models.ReportSummary{}, err
		}
		sum.BookingsByStatus[row.Status] = row.Count
		sum.Bookings += row.Count
	}
	if err := cur.Err(); err != nil {
		return models.ReportSummary{}, err
	}
	return sum, nil
}
