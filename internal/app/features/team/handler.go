// internal/app/features/team/handler.go
package team

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/dalemusser/blend/internal/app/store/audit"
	teamstore "github.com/dalemusser/blend/internal/app/store/team"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
	"github.com/dalemusser/blend/internal/app/system/formutil"
	"github.com/dalemusser/blend/internal/app/system/htmlsanitize"
	"github.com/dalemusser/blend/internal/app/system/mediastore"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// photoDir is the upload subdirectory for team photos.
const photoDir = "team"

// Store is the subset of the team store the handlers use.
type Store interface {
	Create(ctx context.Context, m models.TeamMember) (models.TeamMember, error)
	List(ctx context.Context) ([]models.TeamMember, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.TeamMember, error)
	Update(ctx context.Context, id primitive.ObjectID, upd teamstore.Update) (models.TeamMember, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.TeamMember, error)
}

// Media stores uploaded photos.
type Media interface {
	Save(dir string, fh *multipart.FileHeader) (string, error)
	Discard(publicPath string, log *zap.Logger)
	MaxBytes() int64
}

type Handler struct {
	Team  Store
	Media Media
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(team Store, media Media, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Team: team, Media: media, Audit: audit, Log: logger}
}

// ServeList returns all team members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Team.List(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "list team members failed", err)
		return
	}
	respond.OK(w, "", list)
}

// savePhoto stores the "photo" part, if any. It writes the error response
// itself and reports ok=false when the request should stop.
func (h *Handler) savePhoto(w http.ResponseWriter, r *http.Request) (path string, ok bool) {
	if !formutil.HasFile(r, "photo") {
		return "", true
	}
	path, err := h.Media.Save(photoDir, r.MultipartForm.File["photo"][0])
	if err != nil {
		if msg, client := mediastore.ClientMessage(err); client {
			respond.BadRequest(w, msg)
			return "", false
		}
		respond.ServerError(w, h.Log, "save team photo failed", err)
		return "", false
	}
	return path, true
}

// HandleCreate adds a team member from a multipart form.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := formutil.ParseMultipart(w, r, h.Media.MaxBytes()); err != nil {
		respond.BadRequest(w, "Invalid form data.")
		return
	}

	name := htmlsanitize.StripTags(formutil.Value(r, "name"))
	role := htmlsanitize.StripTags(formutil.Value(r, "role"))
	bio := htmlsanitize.Sanitize(formutil.Value(r, "bio"))
	if name == "" || role == "" || bio == "" || !formutil.HasFile(r, "photo") {
		respond.BadRequest(w, "Name, role, bio and photo are required.")
		return
	}
	socials, err := formutil.ParseSocials(r.FormValue("socials"))
	if err != nil {
		respond.BadRequest(w, "Invalid socials format.")
		return
	}

	photo, ok := h.savePhoto(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Team.Create(ctx, models.TeamMember{
		Name:    name,
		Role:    role,
		Bio:     bio,
		Photo:   photo,
		Socials: socials,
	})
	if err != nil {
		h.Media.Discard(photo, h.Log)
		respond.ServerError(w, h.Log, "create team member failed", err)
		return
	}

	h.Audit.AdminAction(ctx, r, audit.EventTeamMemberCreated, m.ID, map[string]string{"name": m.Name})
	respond.Created(w, "Team member created", m)
}

// HandleUpdate overwrites the non-empty fields of a team member. A new
// photo replaces the old one, which is removed best-effort.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid team member id.")
		return
	}
	if err := formutil.ParseMultipart(w, r, h.Media.MaxBytes()); err != nil {
		respond.BadRequest(w, "Invalid form data.")
		return
	}
	socials, err := formutil.ParseSocials(r.FormValue("socials"))
	if err != nil {
		respond.BadRequest(w, "Invalid socials format.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Team member not found")
			return
		}
		respond.ServerError(w, h.Log, "load team member failed", err, zap.String("team_member_id", id.Hex()))
		return
	}

	photo, ok := h.savePhoto(w, r)
	if !ok {
		return
	}

	m, err := h.Team.Update(ctx, id, teamstore.Update{
		Name:    htmlsanitize.StripTags(formutil.Value(r, "name")),
		Role:    htmlsanitize.StripTags(formutil.Value(r, "role")),
		Bio:     htmlsanitize.Sanitize(formutil.Value(r, "bio")),
		Photo:   photo,
		Socials: socials,
	})
	if err != nil {
		h.Media.Discard(photo, h.Log)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Team member not found")
			return
		}
		respond.ServerError(w, h.Log, "update team member failed", err, zap.String("team_member_id", id.Hex()))
		return
	}

	if photo != "" && existing.Photo != photo {
		h.Media.Discard(existing.Photo, h.Log)
	}
	h.Audit.AdminAction(ctx, r, audit.EventTeamMemberUpdated, m.ID, nil)
	respond.OK(w, "Team member updated", m)
}

// HandleDelete removes a team member and then its photo.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid team member id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Team.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Team member not found")
			return
		}
		respond.ServerError(w, h.Log, "delete team member failed", err, zap.String("team_member_id", id.Hex()))
		return
	}

	h.Media.Discard(m.Photo, h.Log)
	h.Audit.AdminAction(ctx, r, audit.EventTeamMemberDeleted, m.ID, map[string]string{"name": m.Name})
	respond.OK(w, "Team member deleted", nil)
}
