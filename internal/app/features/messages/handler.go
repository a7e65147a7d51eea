// internal/app/features/messages/handler.go
package messages

import (
	"context"
	"net/http"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
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
	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, m models.Message) (models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type Handler struct {
	Messages Store
	Events   realtime.Publisher
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(messages Store, events realtime.Publisher, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Messages: messages, Events: events, Audit: audit, Log: logger}
}

type createInput struct {
	FullName string `json:"fullName" validate:"required,max=200" label:"Full name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Subject  string `json:"subject" validate:"required,max=300" label:"Subject"`
	Message  string `json:"message" validate:"required,max=5000" label:"Message"`
}

// HandleCreate stores a contact-form message and notifies admins.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return
	}
	in.FullName = htmlsanitize.StripTags(normalize.Name(in.FullName))
	in.Email = normalize.Email(in.Email)
	in.Subject = htmlsanitize.StripTags(in.Subject)
	in.Message = htmlsanitize.StripTags(in.Message)

	if in.FullName == "" || in.Email == "" || in.Subject == "" || in.Message == "" {
		respond.BadRequest(w, "All fields are required.")
		return
	}
	if v := inputval.Validate(in); v.HasErrors() {
		respond.BadRequest(w, v.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Messages.Create(ctx, models.Message{
		FullName: in.FullName,
		Email:    in.Email,
		Subject:  in.Subject,
		Body:     in.Message,
	})
	if err != nil {
		respond.ServerError(w, h.Log, "create message failed", err)
		return
	}

	metrics.IncSubmission("message")
	h.Events.Publish(ctx, realtime.EventNewMessage, m)
	respond.Created(w, "Message sent successfully", m)
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Messages.List(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "list messages failed", err)
		return
	}
	respond.OK(w, "", list)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid message id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Messages.Delete(ctx, id)
	if err != nil {
		respond.ServerError(w, h.Log, "delete message failed", err, zap.String("message_id", id.Hex()))
		return
	}
	if n == 0 {
		respond.NotFound(w, "Message not found")
		return
	}

	h.Audit.AdminAction(ctx, r, audit.EventMessageDeleted, id, nil)
	respond.OK(w, "Message deleted", nil)
}
