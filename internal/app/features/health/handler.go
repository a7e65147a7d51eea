package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/blend/internal/app/system/realtime"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger checks that a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// MongoPinger pings the primary.
func MongoPinger(client *mongo.Client) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

// RedisPinger pings the relay's Redis. A nil client yields nil.
func RedisPinger(rdb *redis.Client) Pinger {
	if rdb == nil {
		return nil
	}
	return PingFunc(func(ctx context.Context) error {
		return realtime.Ping(ctx, rdb)
	})
}

// Handler holds dependencies needed for health checks. Cache may be nil
// when the Redis relay is not configured.
type Handler struct {
	DB    Pinger
	Cache Pinger
	Log   *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(db, cache Pinger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Cache: cache, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "cache":"connected" }
//
// When a dependency fails: 503 with "status":"error". Error details are
// logged, not returned.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "connected"}
	code := http.StatusOK

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		code = http.StatusServiceUnavailable
	}

	if h.Cache != nil {
		resp.Cache = "connected"
		if err := h.Cache.Ping(ctx); err != nil {
			h.Log.Error("health-check: redis ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Cache = "disconnected"
			if resp.Message == "" {
				resp.Message = "Cache unavailable"
			}
			code = http.StatusServiceUnavailable
		}
	}

	respond.JSON(w, code, resp)
}
