package gallery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	gallerystore "github.com/dalemusser/blend/internal/app/store/gallery"
	"github.com/dalemusser/blend/internal/app/system/mediastore"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeStore struct {
	items map[primitive.ObjectID]models.GalleryItem
}

func (f *fakeStore) Create(_ context.Context, g models.GalleryItem) (models.GalleryItem, error) {
	g.ID = primitive.NewObjectID()
	f.items[g.ID] = g
	return g, nil
}

func (f *fakeStore) List(context.Context) ([]models.GalleryItem, error) {
	out := []models.GalleryItem{}
	for _, g := range f.items {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (models.GalleryItem, error) {
	g, ok := f.items[id]
	if !ok {
		return models.GalleryItem{}, mongo.ErrNoDocuments
	}
	return g, nil
}

func (f *fakeStore) Update(_ context.Context, id primitive.ObjectID, upd gallerystore.Update) (models.GalleryItem, error) {
	g, ok := f.items[id]
	if !ok {
		return models.GalleryItem{}, mongo.ErrNoDocuments
	}
	if upd.Title != "" {
		g.Title = upd.Title
	}
	if upd.Description != "" {
		g.Description = upd.Description
	}
	if upd.ImageURL != "" {
		g.ImageURL = upd.ImageURL
	}
	f.items[id] = g
	return g, nil
}

func (f *fakeStore) Delete(_ context.Context, id primitive.ObjectID) (models.GalleryItem, error) {
	g, ok := f.items[id]
	if !ok {
		return models.GalleryItem{}, mongo.ErrNoDocuments
	}
	delete(f.items, id)
	return g, nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeStore, *mediastore.Store) {
	t.Helper()
	media, err := mediastore.New(t.TempDir(), "/uploads", 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	store := &fakeStore{items: map[primitive.ObjectID]models.GalleryItem{}}
	return NewHandler(store, media, nil, zap.NewNop()), store, media
}

func image(name string) testutil.FormFile {
	return testutil.FormFile{Field: "image", Filename: name, Content: []byte("\x89PNG\r\n\x1a\n")}
}

func create(t *testing.T, h *Handler, fields map[string]string, files ...testutil.FormFile) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.MultipartRequest(t, "POST", "/api/gallery", fields, files...))
	return rec
}

func TestHandleCreate(t *testing.T) {
	h, _, media := newTestHandler(t)

	rec := create(t, h, map[string]string{"title": "Garden <i>wedding</i>", "description": "June"}, image("garden.png"))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var g models.GalleryItem
	testutil.DecodeEnvelope(t, rec, &g)
	if g.Title != "Garden wedding" {
		t.Errorf("Title = %q, want tags stripped", g.Title)
	}
	if !testutil.Stored(media, g.ImageURL) {
		t.Errorf("image %q not stored", g.ImageURL)
	}
}

func TestHandleCreate_RequiresTitleAndImage(t *testing.T) {
	h, _, _ := newTestHandler(t)
	testutil.AssertStatus(t, create(t, h, map[string]string{"title": "No image"}), http.StatusBadRequest)
	testutil.AssertStatus(t, create(t, h, map[string]string{"description": "no title"}, image("x.png")), http.StatusBadRequest)
}

func TestHandleUpdate_KeepsImageWhenNoneSent(t *testing.T) {
	h, _, media := newTestHandler(t)
	var g models.GalleryItem
	testutil.DecodeEnvelope(t, create(t, h, map[string]string{"title": "Old"}, image("a.png")), &g)

	req := testutil.MultipartRequest(t, "PUT", "/", map[string]string{"title": "New"})
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var updated models.GalleryItem
	testutil.DecodeEnvelope(t, rec, &updated)
	if updated.Title != "New" || updated.ImageURL != g.ImageURL {
		t.Errorf("updated = %+v", updated)
	}
	if !testutil.Stored(media, g.ImageURL) {
		t.Error("image removed although none was replaced")
	}
}

func TestHandleDelete_RemovesImage(t *testing.T) {
	h, store, media := newTestHandler(t)
	var g models.GalleryItem
	testutil.DecodeEnvelope(t, create(t, h, map[string]string{"title": "Gone"}, image("gone.png")), &g)

	req := testutil.WithChiURLParam(httptest.NewRequest("DELETE", "/", nil), "id", g.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	if len(store.items) != 0 {
		t.Error("document still present")
	}
	if testutil.Stored(media, g.ImageURL) {
		t.Error("image still on disk")
	}
}

func TestHandleDelete_MissingFileStillDeletes(t *testing.T) {
	h, store, _ := newTestHandler(t)
	g, _ := store.Create(context.Background(), models.GalleryItem{Title: "Orphan", ImageURL: "/uploads/gallery/missing.png"})

	req := testutil.WithChiURLParam(httptest.NewRequest("DELETE", "/", nil), "id", g.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)
}
