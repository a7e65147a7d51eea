package users

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/blend/internal/app/store/users"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/app/system/inputval"
	"github.com/dalemusser/blend/internal/app/system/metrics"
	"github.com/dalemusser/blend/internal/app/system/normalize"
	"github.com/dalemusser/blend/internal/app/system/ratelimit"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// minPasswordLen applies to registration and password changes.
const minPasswordLen = 8

// Store is the subset of the user store the handlers use.
type Store interface {
	Create(ctx context.Context, u models.User, password string) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd userstore.ProfileUpdate) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, password string) error
	List(ctx context.Context) ([]models.User, error)
}

// Handler serves account registration, login and profile endpoints.
type Handler struct {
	Users   Store
	Tokens  *auth.Tokens
	Limiter *ratelimit.LoginLimiter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(users Store, tokens *auth.Tokens, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Tokens:  tokens,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}

type userPayload struct {
	User models.User `json:"user"`
}

type loginPayload struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"` // seconds
	User      models.User `json:"user"`
}

type registerInput struct {
	Name        string `json:"name" validate:"required,max=100" label:"Name"`
	Email       string `json:"email" validate:"required,email" label:"Email"`
	Password    string `json:"password" validate:"required" label:"Password"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=40" label:"Phone number"`
}

// HandleRegister creates a plain user account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return
	}
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	in.PhoneNumber = normalize.Phone(in.PhoneNumber)

	if in.Name == "" || in.Email == "" || in.Password == "" || in.PhoneNumber == "" {
		respond.BadRequest(w, "All fields are required")
		return
	}
	if v := inputval.Validate(in); v.HasErrors() {
		respond.BadRequest(w, v.First())
		return
	}
	if len(in.Password) < minPasswordLen {
		respond.BadRequest(w, "Password must be at least 8 characters")
		return
	}
	if len(in.Password) > userstore.MaxPasswordBytes {
		respond.BadRequest(w, "Password must be at most 72 bytes")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Role:        models.RoleUser,
	}, in.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			respond.BadRequest(w, "Email already in use")
			return
		}
		respond.ServerError(w, h.Log, "register user failed", err)
		return
	}

	metrics.IncSubmission("user")
	h.Audit.Registered(ctx, r, u.ID, u.Email)
	respond.Created(w, "User registered successfully", userPayload{User: u})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and issues a token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return
	}
	in.Email = normalize.Email(in.Email)
	if in.Email == "" || in.Password == "" {
		respond.BadRequest(w, "Email and password required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			h.Audit.LoginFailedRateLimit(ctx, r, in.Email, reason)
			respond.Error(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.Audit.LoginFailedUserNotFound(ctx, r, in.Email)
			respond.NotFound(w, "User not found")
			return
		}
		respond.ServerError(w, h.Log, "login lookup failed", err)
		return
	}

	if !userstore.CheckPassword(u.PasswordHash, in.Password) {
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		respond.ServerError(w, h.Log, "issue token failed", err, zap.String("user_id", u.ID.Hex()))
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email, u.Role)
	respond.OK(w, "Login successful", loginPayload{
		Token:     token,
		ExpiresIn: int64(h.Tokens.TTL().Seconds()),
		User:      *u,
	})
}

// currentUserID returns the token subject as an ObjectID.
func currentUserID(r *http.Request) (primitive.ObjectID, bool) {
	tu, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(tu.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// ServeMe returns the signed-in user's profile.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authorized, please log in.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "User not found")
			return
		}
		respond.ServerError(w, h.Log, "load current user failed", err, zap.String("user_id", id.Hex()))
		return
	}
	respond.OK(w, "", userPayload{User: *u})
}

type updateMeInput struct {
	Name            *string `json:"name"`
	PhoneNumber     *string `json:"phoneNumber"`
	Address         *string `json:"address"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// changed returns p when it holds a non-blank value different from current.
func changed(p *string, current string, clean func(string) string) *string {
	if p == nil {
		return nil
	}
	v := clean(*p)
	if v == "" || v == current {
		return nil
	}
	return &v
}

// HandleUpdateMe updates the signed-in user's profile and, optionally,
// their password.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authorized, please log in.")
		return
	}

	var in updateMeInput
	if err := respond.DecodeJSON(w, r, &in, respond.MaxJSONBody); err != nil {
		respond.BadRequest(w, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.NotFound(w, "User not found")
			return
		}
		respond.ServerError(w, h.Log, "load current user failed", err, zap.String("user_id", id.Hex()))
		return
	}

	upd := userstore.ProfileUpdate{
		Name:        changed(in.Name, u.Name, normalize.Name),
		PhoneNumber: changed(in.PhoneNumber, u.PhoneNumber, normalize.Phone),
		Address:     changed(in.Address, u.Address, normalize.Name),
	}

	changePassword := in.CurrentPassword != "" || in.NewPassword != ""
	if changePassword {
		if in.CurrentPassword == "" || in.NewPassword == "" {
			respond.BadRequest(w, "Both current and new passwords are required to change password.")
			return
		}
		if !userstore.CheckPassword(u.PasswordHash, in.CurrentPassword) {
			h.Audit.PasswordChangeFailed(ctx, r, u.ID, "current password incorrect")
			respond.Error(w, http.StatusUnauthorized, "Current password is incorrect.")
			return
		}
		if len(in.NewPassword) < minPasswordLen {
			respond.BadRequest(w, "New password must be at least 8 characters.")
			return
		}
		if len(in.NewPassword) > userstore.MaxPasswordBytes {
			respond.BadRequest(w, "New password must be at most 72 bytes.")
			return
		}
		if in.NewPassword == in.CurrentPassword || userstore.CheckPassword(u.PasswordHash, in.NewPassword) {
			respond.BadRequest(w, "New password cannot be the same as current password.")
			return
		}
	}

	if upd.IsEmpty() && !changePassword {
		respond.OK(w, "No changes detected.", nil)
		return
	}

	if changePassword {
		if err := h.Users.SetPassword(ctx, id, in.NewPassword); err != nil {
			respond.ServerError(w, h.Log, "set password failed", err, zap.String("user_id", id.Hex()))
			return
		}
		h.Audit.PasswordChanged(ctx, r, id)
	}

	updated := u
	if !upd.IsEmpty() {
		updated, err = h.Users.UpdateProfile(ctx, id, upd)
		if err != nil {
			respond.ServerError(w, h.Log, "update profile failed", err, zap.String("user_id", id.Hex()))
			return
		}
	}
	respond.OK(w, "Profile updated successfully!", userPayload{User: *updated})
}

// HandleLogout acknowledges a logout. Tokens are stateless; the client
// discards its copy.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var userID string
	if tu, ok := auth.CurrentUser(r); ok {
		userID = tu.ID
	}
	h.Audit.Logout(r.Context(), r, userID)
	respond.OK(w, "Logout successful", nil)
}

// ServeList returns every user, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "list users failed", err)
		return
	}
	respond.OK(w, "", list)
}
