// internal/app/features/bookings/handler.go
package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/app/system/formutil"
	"github.com/dalemusser/blend/internal/app/system/htmlsanitize"
	"github.com/dalemusser/blend/internal/app/system/metrics"
	"github.com/dalemusser/blend/internal/app/system/normalize"
	"github.com/dalemusser/blend/internal/app/system/realtime"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, b models.EquipmentBooking) (models.EquipmentBooking, error)
	List(ctx context.Context, status string) ([]models.EquipmentBooking, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.EquipmentBooking, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.EquipmentBooking, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type Handler struct {
	Bookings Store
	Events   realtime.Publisher
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(bookings Store, events realtime.Publisher, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Bookings: bookings, Events: events, Audit: audit, Log: logger}
}

// quantity accepts 4, 4.0 or "4". Values of any other shape decode to -1
// so the line check rejects them with its own message.
type quantity float64

func (q *quantity) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*q = quantity(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*q = quantity(f)
			return nil
		}
	}
	*q = -1
	return nil
}

type itemInput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Quantity quantity `json:"quantity"`
}

type createInput struct {
	FullName           string      `json:"fullName"`
	Phone              string      `json:"phone"`
	Location           string      `json:"location"`
	Date               string      `json:"date"`
	SelectedEquipments []itemInput `json:"selectedEquipments"`
	Equipments         []itemInput `json:"equipments"`
}

func (in createInput) items() []itemInput {
	if len(in.SelectedEquipments) > 0 {
		return in.SelectedEquipments
	}
	return in.Equipments
}

// parseItems checks every line and converts it. ok is false when any line
// lacks an id or name or has a quantity that is not a whole number >= 1.
func parseItems(raw []itemInput) (items []models.BookingItem, ok bool) {
	items = make([]models.BookingItem, 0, len(raw))
	for _, it := range raw {
		id := strings.TrimSpace(it.ID)
		name := htmlsanitize.StripTags(strings.TrimSpace(it.Name))
		q := float64(it.Quantity)
		if id == "" || name == "" || q < 1 || q != math.Trunc(q) || q > math.MaxInt32 {
			return nil, false
		}
		items = append(items, models.BookingItem{ID: id, Name: name, Quantity: int(q)})
	}
	return items, true
}

// HandleCreate stores a public booking request as pending and notifies admins.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return
	}
	fullName := htmlsanitize.StripTags(normalize.Name(in.FullName))
	phone := normalize.Phone(in.Phone)
	location := htmlsanitize.StripTags(strings.TrimSpace(in.Location))
	rawDate := strings.TrimSpace(in.Date)
	raw := in.items()

	if fullName == "" || phone == "" || location == "" || rawDate == "" || len(raw) == 0 {
		respond.BadRequest(w, "All fields are required and at least one equipment must be selected")
		return
	}
	items, ok := parseItems(raw)
	if !ok {
		respond.BadRequest(w, "Each equipment must have an id, name, and quantity >= 1")
		return
	}
	date, err := dateparam.ParseDate(rawDate)
	if err != nil {
		respond.BadRequest(w, "Date must be YYYY-MM-DD or RFC 3339.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Bookings.Create(ctx, models.EquipmentBooking{
		FullName: fullName,
		Phone:    phone,
		Location: location,
		Date:     date,
		Items:    items,
	})
	if err != nil {
		respond.ServerError(w, h.Log, "create booking failed", err)
		return
	}

	metrics.IncSubmission("booking")
	h.Events.Publish(ctx, realtime.EventNewBooking, b)
	respond.Created(w, "Booking submitted successfully", b)
}

// ServeList returns bookings newest first, optionally filtered by ?status=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	status := normalize.Status(r.URL.Query().Get("status"))
	if status != "" && !models.IsValidBookingStatus(status) {
		respond.BadRequest(w, "Invalid status value")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Bookings.List(ctx, status)
	if err != nil {
		respond.ServerError(w, h.Log, "list bookings failed", err)
		return
	}
	respond.OK(w, "", list)
}

// ServeOne returns a single booking.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid booking id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Booking not found")
			return
		}
		respond.ServerError(w, h.Log, "get booking failed", err, zap.String("booking_id", id.Hex()))
		return
	}
	respond.OK(w, "", b)
}

type statusInput struct {
	Status string `json:"status"`
}

// HandleUpdateStatus records an admin decision. Any valid status may be
// set from any other.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid booking id.")
		return
	}
	var in statusInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return
	}
	status := normalize.Status(in.Status)
	if !models.IsValidBookingStatus(status) {
		respond.BadRequest(w, "Invalid status value")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Booking not found")
			return
		}
		respond.ServerError(w, h.Log, "update booking status failed", err, zap.String("booking_id", id.Hex()))
		return
	}

	metrics.IncBookingDecision(status)
	h.Events.Publish(ctx, realtime.EventUpdateBookingStatus, b)
	h.Audit.BookingStatusChanged(ctx, r, id, status)
	respond.OK(w, "Booking status updated", b)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid booking id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Bookings.Delete(ctx, id)
	if err != nil {
		respond.ServerError(w, h.Log, "delete booking failed", err, zap.String("booking_id", id.Hex()))
		return
	}
	if n == 0 {
		respond.NotFound(w, "Booking not found")
		return
	}

	h.Events.Publish(ctx, realtime.EventDeleteBooking, id.Hex())
	h.Audit.AdminAction(ctx, r, audit.EventBookingDeleted, id, nil)
	respond.OK(w, "Booking deleted", nil)
}
