// internal/domain/models/reports.go
package models

// DayCount is one row of a per-day report.
type DayCount struct {
	Date  string `bson:"_id" json:"date"` // YYYY-MM-DD (UTC)
	Count int64  `bson:"count" json:"count"`
}

// EquipmentUsage aggregates booking lines by equipment name.
type EquipmentUsage struct {
	Equipment string `bson:"_id" json:"equipment"`
	Bookings  int64  `bson:"bookings" json:"bookings"`
	Quantity  int64  `bson:"quantity" json:"quantity"`
}

// ReportSummary holds collection totals for a date range.
type ReportSummary struct {
	Quotes           int64            `json:"quotes"`
	Messages         int64            `json:"messages"`
	Bookings         int64            `json:"bookings"`
	BookingsByStatus map[string]int64 `json:"bookingsByStatus"`
}
