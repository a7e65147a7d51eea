// internal/app/features/quotes/handler.go
package quotes

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/app/system/formutil"
	"github.com/dalemusser/blend/internal/app/system/htmlsanitize"
	"github.com/dalemusser/blend/internal/app/system/inputval"
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
	Create(ctx context.Context, q models.Quote) (models.Quote, error)
	List(ctx context.Context) ([]models.Quote, error)
	SetRead(ctx context.Context, id primitive.ObjectID, read bool) (models.Quote, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type Handler struct {
	Quotes Store
	Events realtime.Publisher
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(quotes Store, events realtime.Publisher, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Quotes: quotes, Events: events, Audit: audit, Log: logger}
}

type createInput struct {
	FullName    string `json:"fullName" validate:"required,max=200" label:"Full name"`
	Email       string `json:"email" validate:"required,email" label:"Email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=40" label:"Phone number"`
	EventType   string `json:"eventType" validate:"required,max=100" label:"Event type"`
	EventDate   string `json:"eventDate" validate:"required" label:"Event date"`
	Guests      int    `json:"guests" validate:"gte=1" label:"Guests"`
	Location    string `json:"location" validate:"max=300" label:"Location"`
	Details     string `json:"details" validate:"max=5000" label:"Details"`
}

// HandleCreate stores a public quote request and notifies admins.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return
	}
	in.FullName = htmlsanitize.StripTags(normalize.Name(in.FullName))
	in.Email = normalize.Email(in.Email)
	in.PhoneNumber = normalize.Phone(in.PhoneNumber)
	in.EventType = htmlsanitize.StripTags(normalize.Name(in.EventType))
	in.Location = htmlsanitize.StripTags(in.Location)
	in.Details = htmlsanitize.StripTags(in.Details)

	if in.FullName == "" || in.Email == "" || in.PhoneNumber == "" || in.EventType == "" || in.EventDate == "" {
		respond.BadRequest(w, "Please fill in all required fields.")
		return
	}
	if v := inputval.Validate(in); v.HasErrors() {
		respond.BadRequest(w, v.First())
		return
	}
	eventDate, err := dateparam.ParseDate(in.EventDate)
	if err != nil {
		respond.BadRequest(w, "Event date must be YYYY-MM-DD or RFC 3339.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, err := h.Quotes.Create(ctx, models.Quote{
		FullName:    in.FullName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		EventType:   in.EventType,
		EventDate:   eventDate,
		Guests:      in.Guests,
		Location:    in.Location,
		Details:     in.Details,
	})
	if err != nil {
		respond.ServerError(w, h.Log, "create quote failed", err)
		return
	}

	metrics.IncSubmission("quote")
	h.Events.Publish(ctx, realtime.EventNewQuote, q)
	respond.Created(w, "Quote request submitted successfully", q)
}

// ServeList returns all quotes, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Quotes.List(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "list quotes failed", err)
		return
	}
	respond.OK(w, "", list)
}

type readInput struct {
	Read *bool `json:"read"`
}

// HandleMarkRead sets the persisted read flag. An empty body marks read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid quote id.")
		return
	}

	var in readInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil && !errors.Is(err, io.EOF) {
		respond.BadRequest(w, "Invalid request body.")
		return
	}
	read := true
	if in.Read != nil {
		read = *in.Read
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, err := h.Quotes.SetRead(ctx, id, read)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Quote not found")
			return
		}
		respond.ServerError(w, h.Log, "mark quote read failed", err, zap.String("quote_id", id.Hex()))
		return
	}
	respond.OK(w, "", q)
}

// HandleDelete removes a quote and tells admins its id.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid quote id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Quotes.Delete(ctx, id)
	if err != nil {
		respond.ServerError(w, h.Log, "delete quote failed", err, zap.String("quote_id", id.Hex()))
		return
	}
	if n == 0 {
		respond.NotFound(w, "Quote not found")
		return
	}

	h.Events.Publish(ctx, realtime.EventDeleteQuote, id.Hex())
	h.Audit.AdminAction(ctx, r, audit.EventQuoteDeleted, id, nil)
	respond.OK(w, "Quote deleted", nil)
}
