// internal/app/features/gallery/handler.go
package gallery

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/dalemusser/blend/internal/app/store/audit"
	gallerystore "github.com/dalemusser/blend/internal/app/store/gallery"
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

const imageDir = "gallery"

type Store interface {
	Create(ctx context.Context, g models.GalleryItem) (models.GalleryItem, error)
	List(ctx context.Context) ([]models.GalleryItem, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.GalleryItem, error)
	Update(ctx context.Context, id primitive.ObjectID, upd gallerystore.Update) (models.GalleryItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.GalleryItem, error)
}

type Media interface {
	Save(dir string, fh *multipart.FileHeader) (string, error)
	Discard(publicPath string, log *zap.Logger)
	MaxBytes() int64
}

type Handler struct {
	Gallery Store
	Media   Media
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(gallery Store, media Media, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Gallery: gallery, Media: media, Audit: audit, Log: logger}
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	items, err := h.Gallery.List(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "list gallery failed", err)
		return
	}
	respond.OK(w, "", items)
}

func (h *Handler) saveImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !formutil.HasFile(r, "image") {
		return "", true
	}
	p, err := h.Media.Save(imageDir, r.MultipartForm.File["image"][0])
	if err != nil {
		if msg, client := mediastore.ClientMessage(err); client {
			respond.BadRequest(w, msg)
			return "", false
		}
		respond.ServerError(w, h.Log, "save gallery image failed", err)
		return "", false
	}
	return p, true
}

// HandleCreate adds a gallery image. Title and image are required.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := formutil.ParseMultipart(w, r, h.Media.MaxBytes()); err != nil {
		respond.BadRequest(w, "Invalid form data.")
		return
	}
	title := htmlsanitize.StripTags(formutil.Value(r, "title"))
	if title == "" || !formutil.HasFile(r, "image") {
		respond.BadRequest(w, "Title and image are required.")
		return
	}

	img, ok := h.saveImage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Gallery.Create(ctx, models.GalleryItem{
		Title:       title,
		Description: htmlsanitize.StripTags(formutil.Value(r, "description")),
		ImageURL:    img,
	})
	if err != nil {
		h.Media.Discard(img, h.Log)
		respond.ServerError(w, h.Log, "create gallery item failed", err)
		return
	}

	h.Audit.AdminAction(ctx, r, audit.EventGalleryItemCreated, g.ID, map[string]string{"title": g.Title})
	respond.Created(w, "Gallery item created", g)
}

// HandleUpdate overwrites non-empty fields and optionally swaps the image.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid gallery item id.")
		return
	}
	if err := formutil.ParseMultipart(w, r, h.Media.MaxBytes()); err != nil {
		respond.BadRequest(w, "Invalid form data.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Gallery.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Gallery item not found")
			return
		}
		respond.ServerError(w, h.Log, "load gallery item failed", err, zap.String("gallery_id", id.Hex()))
		return
	}

	img, ok := h.saveImage(w, r)
	if !ok {
		return
	}

	g, err := h.Gallery.Update(ctx, id, gallerystore.Update{
		Title:       htmlsanitize.StripTags(formutil.Value(r, "title")),
		Description: htmlsanitize.StripTags(formutil.Value(r, "description")),
		ImageURL:    img,
	})
	if err != nil {
		h.Media.Discard(img, h.Log)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Gallery item not found")
			return
		}
		respond.ServerError(w, h.Log, "update gallery item failed", err, zap.String("gallery_id", id.Hex()))
		return
	}

	if img != "" && existing.ImageURL != img {
		h.Media.Discard(existing.ImageURL, h.Log)
	}
	h.Audit.AdminAction(ctx, r, audit.EventGalleryItemUpdated, g.ID, nil)
	respond.OK(w, "Gallery item updated", g)
}

// HandleDelete removes the document, then its image best-effort.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.IDParam(r, "id")
	if err != nil {
		respond.BadRequest(w, "Invalid gallery item id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Gallery.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "Gallery item not found")
			return
		}
		respond.ServerError(w, h.Log, "delete gallery item failed", err, zap.String("gallery_id", id.Hex()))
		return
	}

	h.Media.Discard(g.ImageURL, h.Log)
	h.Audit.AdminAction(ctx, r, audit.EventGalleryItemDeleted, g.ID, map[string]string{"title": g.Title})
	respond.OK(w, "Gallery item deleted", nil)
}
