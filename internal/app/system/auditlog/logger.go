// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination values for Config fields.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// IsValidSetting reports whether s is one of the destination values.
func IsValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (register, login, password).
	Auth string
	// Admin controls logging for admin actions (deletions, booking decisions, content edits).
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers under test can leave it unset.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = All
	}

	if setting == Off {
		return
	}

	if setting == All || setting == Log || setting == "" {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// Registered logs a new account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventRegistered, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, role string) {
	e := authEvent(r, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email, "role": role}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := authEvent(r, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login refused by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedEmail, reason string) {
	e := authEvent(r, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// Logout logs a logout. userIDStr is empty for anonymous callers.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	e := authEvent(r, audit.EventLogout, true)
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

// PasswordChanged logs a successful password change.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := authEvent(r, audit.EventPasswordChanged, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// PasswordChangeFailed logs a rejected password change.
func (l *Logger) PasswordChangeFailed(ctx context.Context, r *http.Request, userID primitive.ObjectID, reason string) {
	e := authEvent(r, audit.EventPasswordChangeFailed, false)
	e.UserID = &userID
	e.FailureReason = reason
	l.Log(ctx, e)
}

// --- Admin Events ---

// AdminBootstrapped logs the startup admin being created or promoted.
func (l *Logger) AdminBootstrapped(ctx context.Context, userID primitive.ObjectID, email string, created bool) {
	action := "promoted"
	if created {
		action = "created"
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAdminBootstrapped,
		UserID:    &userID,
		IP:        "startup",
		Success:   true,
		Details:   map[string]string{"email": email, "action": action},
	})
}

// AdminAction logs an admin change to a document. The actor is taken from
// the request's token user.
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, eventType string, targetID primitive.ObjectID, details map[string]string) {
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		TargetID:  &targetID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	}
	if u, ok := auth.CurrentUser(r); ok {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			e.ActorID = &oid
		}
	}
	l.Log(ctx, e)
}

// BookingStatusChanged logs an admin decision on a booking.
func (l *Logger) BookingStatusChanged(ctx context.Context, r *http.Request, bookingID primitive.ObjectID, status string) {
	l.AdminAction(ctx, r, audit.EventBookingStatusChanged, bookingID, map[string]string{"status": status})
}
