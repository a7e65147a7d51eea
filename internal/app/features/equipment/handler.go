// internal/app/features/equipment/handler.go
package equipment

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
	"github.com/dalemusser/blend/internal/app/system/formutil"
	"github.com/dalemusser/blend/internal/app/system/htmlsanitize"
	"github.com/dalemusser/blend/internal/app/system/inputval"
	"github.com/dalemusser/blend/internal/app/system/normalize"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, e models.Equipment) (models.Equipment, error)
	List(ctx context.Context) ([]models.Equipment, error)
	Update(ctx context.Context, id primitive.ObjectID, e models.Equipment) (models.Equipment, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type Handler struct {
	Equipment Store
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(equipment Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Equipment: equipment, Audit: audit, Log: logger}
}

type input struct {
	Name        string `json:"name" validate:"required,max=200" label:"Name"`
	Category    string `json:"category" validate:"max=100" label:"Category"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	Quantity    int    `json:"quantity" validate:"gte=0" label:"Quantity"`
}

// decode reads and validates a catalog entry, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request) (models.Equipment, bool) {
	var in input
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return models.Equipment{}, false
	}
	in.Name = htmlsanitize.StripTags(normalize.Name(in.Name))
	in.Category = htmlsanitize.StripTags(normalize.Name(in.Category))
	in.Description = htmlsanitize.StripTags(in.Description)
	if v := inputval.Validate(in); v.HasErrors() {
		respond.BadRequest(w, v.First())
		return models.Equipment{}, false
	}
	return models.Equipment{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Quantity:    in.Quantity,
	}, true
}

// ServeList returns the catalog ordered by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Equipment.List(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "list equipment failed", err)
		return
	}
	respond.OK(w, "", list)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	e, ok := decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Equipment.Create(ctx, e)
	if err != nil {
		respond.ServerError(w, h.Log, "create equipment failed", err)
		return
	}
	h.Audit.AdminAction(ctx, r, audit.EventEquipmentCreated, created.ID, map[string]string{"name": created.Name})
	respond.Created(w, "Equipment created", created)
}

// HandleUpdate overwrites every field of a catalog entry.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid equipment id.")
		return
	}
	e, ok := decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Equipment.Update(ctx, id, e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Equipment not found")
			return
		}
		respond.ServerError(w, h.Log, "update equipment failed", err, zap.String("equipment_id", id.Hex()))
		return
	}
	h.Audit.AdminAction(ctx, r, audit.EventEquipmentUpdated, id, nil)
	respond.OK(w, "Equipment updated", updated)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid equipment id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Equipment.Delete(ctx, id)
	if err != nil {
		respond.ServerError(w, h.Log, "delete equipment failed", err, zap.String("equipment_id", id.Hex()))
		return
	}
	if n == 0 {
		respond.NotFound(w, "Equipment not found")
		return
	}
	h.Audit.AdminAction(ctx, r, audit.EventEquipmentDeleted, id, nil)
	respond.OK(w, "Equipment deleted", nil)
}
