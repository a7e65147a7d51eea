package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	userstore "github.com/dalemusser/blend/internal/app/store/users"
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/app/system/ratelimit"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/dalemusser/blend/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[primitive.ObjectID]models.User{}}
}

func (f *fakeStore) Create(_ context.Context, u models.User, password string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	hash, err := userstore.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.ID = primitive.NewObjectID()
	u.PasswordHash = hash
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) UpdateProfile(_ context.Context, id primitive.ObjectID, upd userstore.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	f.users[id] = u
	return &u, nil
}

func (f *fakeStore) SetPassword(_ context.Context, id primitive.ObjectID, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	hash, err := userstore.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeStore) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

const testSecret = "users-test-secret-with-at-least-32-chars"

func newTestHandler(t *testing.T) (*Handler, *fakeStore) {
	t.Helper()
	tokens, err := auth.NewTokens(testSecret, time.Hour, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	store := newFakeStore()
	return NewHandler(store, tokens, ratelimit.NewLoginLimiter(ratelimit.DefaultLimits()), nil, zap.NewNop()), store
}

func register(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, "POST", "/api/users/register", body))
	return rec
}

func validRegistration() map[string]string {
	return map[string]string{
		"name":        "Jane Doe",
		"email":       "Jane@Example.com",
		"password":    "secret123",
		"phoneNumber": "555-0100",
	}
}

func TestHandleRegister_Success_NoPasswordInResponse(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := register(t, h, validRegistration())
	testutil.AssertStatus(t, rec, http.StatusCreated)

	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Errorf("response leaks password data: %s", rec.Body.String())
	}

	var data struct {
		User models.User `json:"user"`
	}
	env := testutil.DecodeEnvelope(t, rec, &data)
	if !env.Success {
		t.Error("expected success envelope")
	}
	if data.User.Email != "jane@example.com" || data.User.Role != models.RoleUser {
		t.Errorf("user = %+v", data.User)
	}
}

func TestHandleRegister_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantMsg string
	}{
		{"missing phone", func(m map[string]string) { delete(m, "phoneNumber") }, "All fields are required"},
		{"blank name", func(m map[string]string) { m["name"] = "   " }, "All fields are required"},
		{"bad email", func(m map[string]string) { m["email"] = "jane@localhost" }, "A valid email address is required."},
		{"short password", func(m map[string]string) { m["password"] = "short" }, "Password must be at least 8 characters"},
		{"password over bcrypt limit", func(m map[string]string) { m["password"] = strings.Repeat("a", 73) }, "Password must be at most 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			body := validRegistration()
			tt.mutate(body)

			rec := register(t, h, body)
			testutil.AssertStatus(t, rec, http.StatusBadRequest)
			if env := testutil.DecodeEnvelope(t, rec, nil); env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	h, _ := newTestHandler(t)
	testutil.AssertStatus(t, register(t, h, validRegistration()), http.StatusCreated)

	rec := register(t, h, validRegistration())
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	if env := testutil.DecodeEnvelope(t, rec, nil); env.Message != "Email already in use" {
		t.Errorf("message = %q", env.Message)
	}
}

func login(t *testing.T, h *Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, testutil.JSONRequest(t, "POST", "/api/users/login", map[string]string{"email": email, "password": password}))
	return rec
}

func TestHandleLogin(t *testing.T) {
	h, store := newTestHandler(t)
	admin, err := store.Create(context.Background(), models.User{Name: "Boss", Email: "boss@example.com", Role: models.RoleAdmin}, "adminpass1")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("wrong password", func(t *testing.T) {
		rec := login(t, h, "boss@example.com", "nope-nope")
		testutil.AssertStatus(t, rec, http.StatusUnauthorized)
		if env := testutil.DecodeEnvelope(t, rec, nil); env.Message != "Invalid credentials" {
			t.Errorf("message = %q", env.Message)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		testutil.AssertStatus(t, login(t, h, "ghost@example.com", "whatever1"), http.StatusNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		testutil.AssertStatus(t, login(t, h, "", "whatever1"), http.StatusBadRequest)
	})

	t.Run("success token carries stored role", func(t *testing.T) {
		rec := login(t, h, "BOSS@example.com", "adminpass1")
		testutil.AssertStatus(t, rec, http.StatusOK)

		var data struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		testutil.DecodeEnvelope(t, rec, &data)
		claims, err := h.Tokens.Parse(data.Token)
		if err != nil {
			t.Fatalf("Parse token: %v", err)
		}
		if claims.Role != models.RoleAdmin {
			t.Errorf("token role = %q, want admin", claims.Role)
		}
		if claims.Subject != admin.ID.Hex() {
			t.Errorf("token sub = %q, want %q", claims.Subject, admin.ID.Hex())
		}
	})
}

func TestHandleLogin_RateLimited(t *testing.T) {
	h, _ := newTestHandler(t)
	lim := ratelimit.DefaultLimits()
	lim.LoginEmail = 1
	h.Limiter = ratelimit.NewLoginLimiter(lim)

	login(t, h, "ghost@example.com", "whatever1")
	rec := login(t, h, "ghost@example.com", "whatever1")
	testutil.AssertStatus(t, rec, http.StatusTooManyRequests)
}

func meRequest(t *testing.T, method string, u *auth.TokenUser, body any) *http.Request {
	t.Helper()
	return testutil.AsUser(testutil.JSONRequest(t, method, "/api/users/me", body), u)
}

func TestServeMe(t *testing.T) {
	h, store := newTestHandler(t)
	u, _ := store.Create(context.Background(), models.User{Name: "Jane", Email: "jane@example.com", Role: models.RoleUser}, "secret123")

	rec := httptest.NewRecorder()
	h.ServeMe(rec, meRequest(t, "GET", &auth.TokenUser{ID: u.ID.Hex(), Role: "user"}, nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	var data struct {
		User models.User `json:"user"`
	}
	testutil.DecodeEnvelope(t, rec, &data)
	if data.User.ID != u.ID {
		t.Errorf("user id = %v, want %v", data.User.ID, u.ID)
	}

	rec = httptest.NewRecorder()
	h.ServeMe(rec, meRequest(t, "GET", &auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "user"}, nil))
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestHandleUpdateMe(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
		wantMsg  string
	}{
		{"no changes", map[string]string{"name": "Jane"}, http.StatusOK, "No changes detected."},
		{"profile change", map[string]string{"phoneNumber": "555-9999"}, http.StatusOK, "Profile updated successfully!"},
		{"only new password", map[string]string{"newPassword": "another123"}, http.StatusBadRequest, "Both current and new passwords are required to change password."},
		{"wrong current", map[string]string{"currentPassword": "wrongpass1", "newPassword": "another123"}, http.StatusUnauthorized, "Current password is incorrect."},
		{"short new", map[string]string{"currentPassword": "secret123", "newPassword": "short"}, http.StatusBadRequest, "New password must be at least 8 characters."},
		{"long new", map[string]string{"currentPassword": "secret123", "newPassword": strings.Repeat("a", 73)}, http.StatusBadRequest, "New password must be at most 72 bytes."},
		{"same as current", map[string]string{"currentPassword": "secret123", "newPassword": "secret123"}, http.StatusBadRequest, "New password cannot be the same as current password."},
		{"password change", map[string]string{"currentPassword": "secret123", "newPassword": "another123"}, http.StatusOK, "Profile updated successfully!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newTestHandler(t)
			u, _ := store.Create(context.Background(), models.User{Name: "Jane", Email: "jane@example.com", Role: models.RoleUser}, "secret123")

			rec := httptest.NewRecorder()
			h.HandleUpdateMe(rec, meRequest(t, "PUT", &auth.TokenUser{ID: u.ID.Hex(), Role: "user"}, tt.body))
			testutil.AssertStatus(t, rec, tt.wantCode)
			if env := testutil.DecodeEnvelope(t, rec, nil); env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestHandleUpdateMe_PasswordActuallyChanges(t *testing.T) {
	h, store := newTestHandler(t)
	u, _ := store.Create(context.Background(), models.User{Name: "Jane", Email: "jane@example.com", Role: models.RoleUser}, "secret123")

	rec := httptest.NewRecorder()
	h.HandleUpdateMe(rec, meRequest(t, "PUT", &auth.TokenUser{ID: u.ID.Hex(), Role: "user"},
		map[string]string{"currentPassword": "secret123", "newPassword": "another123"}))
	testutil.AssertStatus(t, rec, http.StatusOK)

	testutil.AssertStatus(t, login(t, h, "jane@example.com", "secret123"), http.StatusUnauthorized)
	testutil.AssertStatus(t, login(t, h, "jane@example.com", "another123"), http.StatusOK)
}

func TestRoutes_Guards(t *testing.T) {
	h, _ := newTestHandler(t)
	router := Routes(h, ratelimit.NewFormLimiter(ratelimit.DefaultLimits()))

	tests := []struct {
		name   string
		method string
		path   string
		user   *auth.TokenUser
		want   int
	}{
		{"me anonymous", "GET", "/me", nil, http.StatusUnauthorized},
		{"list anonymous", "GET", "/", nil, http.StatusUnauthorized},
		{"list as user", "GET", "/", testutil.PlainUser(), http.StatusForbidden},
		{"list as admin", "GET", "/", testutil.AdminUser(), http.StatusOK},
		{"logout anonymous", "POST", "/logout", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user != nil {
				req = testutil.AsUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
