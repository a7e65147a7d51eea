package auditlog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeEvents struct {
	events  []audit.Event
	total   int64
	last    audit.QueryFilter
	since   time.Time
	failErr error
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.last = filter
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.events, nil
}

func (f *fakeEvents) CountByFilter(context.Context, audit.QueryFilter) (int64, error) {
	return f.total, nil
}

func (f *fakeEvents) GetFailedLogins(_ context.Context, since time.Time, _ int64) ([]audit.Event, error) {
	f.since = since
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.events, nil
}

type fakeUsers map[primitive.ObjectID]string

func (f fakeUsers) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if name, ok := f[id]; ok {
			out = append(out, models.User{ID: id, Name: name})
		}
	}
	return out, nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	req := testutil.AsUser(httptest.NewRequest(http.MethodGet, target, nil), testutil.AdminUser())
	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, req)
	return rec
}

func TestServeList_ResolvesNamesAndPages(t *testing.T) {
	actor := primitive.NewObjectID()
	unknown := primitive.NewObjectID()
	target := primitive.NewObjectID()
	events := &fakeEvents{
		total: 120,
		events: []audit.Event{
			{ID: primitive.NewObjectID(), Timestamp: time.Now(), Category: audit.CategoryAdmin,
				EventType: audit.EventBookingStatusChanged, ActorID: &actor, TargetID: &target, Success: true},
			{ID: primitive.NewObjectID(), Timestamp: time.Now(), Category: audit.CategoryAuth,
				EventType: audit.EventLoginSuccess, UserID: &unknown, Success: true},
		},
	}
	h := NewHandler(events, fakeUsers{actor: "Admin Ann"}, zap.NewNop())

	rec := serve(h, "/?category=admin&page=2&start=2026-01-01&end=2026-01-31")
	testutil.AssertStatus(t, rec, http.StatusOK)

	var page listPage
	testutil.DecodeEnvelope(t, rec, &page)
	if page.Page != 2 || page.TotalPages != 3 || page.Total != 120 {
		t.Errorf("paging = %+v", page)
	}
	if len(page.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page.Events))
	}
	if page.Events[0].ActorName != "Admin Ann" {
		t.Errorf("actor = %q", page.Events[0].ActorName)
	}
	if page.Events[0].TargetID != target.Hex() {
		t.Errorf("targetId = %q", page.Events[0].TargetID)
	}
	if page.Events[1].TargetName != unknown.Hex() {
		t.Errorf("unresolved user should show its id, got %q", page.Events[1].TargetName)
	}

	if events.last.Offset != pageSize || events.last.Category != audit.CategoryAdmin {
		t.Errorf("filter = %+v", events.last)
	}
	if events.last.StartTime == nil || events.last.EndTime == nil {
		t.Fatal("expected both time bounds")
	}
	if got := events.last.EndTime.Format(time.RFC3339Nano); got != "2026-01-31T23:59:59.999Z" {
		t.Errorf("end bound = %s, want end of day", got)
	}
}

func TestServeList_BadInput(t *testing.T) {
	h := NewHandler(&fakeEvents{}, fakeUsers{}, zap.NewNop())

	for _, target := range []string{"/?category=security", "/?start=2026-02-01&end=2026-01-01", "/?start=yesterday", "/?user=nobody"} {
		rec := serve(h, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestServeList_StoreError(t *testing.T) {
	h := NewHandler(&fakeEvents{failErr: errors.New("boom")}, fakeUsers{}, zap.NewNop())
	rec := serve(h, "/")
	testutil.AssertStatus(t, rec, http.StatusInternalServerError)
}

func TestRoutes_AdminOnly(t *testing.T) {
	h := NewHandler(&fakeEvents{}, fakeUsers{}, zap.NewNop())

	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	rec = httptest.NewRecorder()
	req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/", nil), testutil.PlainUser())
	Routes(h).ServeHTTP(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestServeList_UserFilter(t *testing.T) {
	events := &fakeEvents{}
	h := NewHandler(events, fakeUsers{}, zap.NewNop())
	uid := primitive.NewObjectID()

	rec := serve(h, "/?user="+uid.Hex())
	testutil.AssertStatus(t, rec, http.StatusOK)
	if events.last.UserID == nil || *events.last.UserID != uid {
		t.Errorf("user filter = %v, want %s", events.last.UserID, uid.Hex())
	}
}

func TestServeFailedLogins(t *testing.T) {
	victim := primitive.NewObjectID()
	events := &fakeEvents{events: []audit.Event{
		{ID: primitive.NewObjectID(), Timestamp: time.Now(), Category: audit.CategoryAuth,
			EventType: audit.EventLoginFailedWrongPassword, UserID: &victim, IP: "203.0.113.9"},
	}}
	h := NewHandler(events, fakeUsers{victim: "Jane"}, zap.NewNop())

	before := time.Now().UTC()
	rec := serve(h, "/failed-logins")
	testutil.AssertStatus(t, rec, http.StatusOK)

	var page failedLoginsPage
	testutil.DecodeEnvelope(t, rec, &page)
	if len(page.Events) != 1 || page.Events[0].TargetName != "Jane" || page.Events[0].IP != "203.0.113.9" {
		t.Errorf("events = %+v", page.Events)
	}
	if d := before.Sub(events.since); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("default since = %v, want about 24h ago", events.since)
	}

	rec = serve(h, "/failed-logins?since=2026-03-01")
	testutil.AssertStatus(t, rec, http.StatusOK)
	if want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !events.since.Equal(want) {
		t.Errorf("since = %v, want %v", events.since, want)
	}

	testutil.AssertStatus(t, serve(h, "/failed-logins?since=soon"), http.StatusBadRequest)
}
