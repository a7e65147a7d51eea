// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"time"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Events is the read side of the audit store.
type Events interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
	GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]audit.Event, error)
}

// Users resolves actor and target ids to names.
type Users interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type Handler struct {
	Events Events
	Users  Users
	Log    *zap.Logger
}

// NewHandler constructs an audit log handler.
func NewHandler(events Events, users Users, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Users: users, Log: logger}
}
