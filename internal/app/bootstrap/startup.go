// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/app/store/queries/mediarefs"
	userstore "github.com/dalemusser/blend/internal/app/store/users"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
	"github.com/dalemusser/blend/internal/app/system/mediastore"
	"github.com/dalemusser/blend/internal/app/system/metrics"
	"github.com/dalemusser/blend/internal/app/system/realtime"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"github.com/dalemusser/blend/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// shared holds the process-wide services created in Startup and used by
// BuildHandler and Shutdown.
var shared struct {
	mu        sync.Mutex
	hub       *realtime.Hub
	events    realtime.Publisher
	stopRelay context.CancelFunc
	sweep     *workers.MediaSweep
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	metrics.Register()

	if err := startRealtime(appCfg, deps, logger); err != nil {
		return err
	}
	if err := startMediaSweep(appCfg, deps, logger); err != nil {
		return err
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg, newAuditLogger(appCfg, deps, logger), logger); err != nil {
			logger.Error("admin bootstrap failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// startRealtime creates the socket hub and picks the publisher handlers
// use: the hub itself, or a Redis relay feeding every instance's hub.
func startRealtime(appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	hub := realtime.NewHub(logger)
	shared.hub = hub
	shared.events = hub

	if deps.Redis == nil {
		return nil
	}

	relayCtx, cancel := context.WithCancel(context.Background())
	relay := realtime.NewRedisRelay(deps.Redis, appCfg.RedisChannel, hub, logger)
	if err := relay.Run(relayCtx); err != nil {
		cancel()
		return fmt.Errorf("start realtime relay: %w", err)
	}
	shared.events = relay
	shared.stopRelay = cancel
	return nil
}

// startMediaSweep starts the orphaned upload sweep unless disabled.
func startMediaSweep(appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.MediaSweepInterval == 0 {
		logger.Info("media sweep disabled")
		return nil
	}
	media, err := mediastore.New(appCfg.UploadDir, appCfg.UploadURLPrefix, appCfg.UploadMaxBytes)
	if err != nil {
		return err
	}
	refs := func(ctx context.Context) (map[string]struct{}, error) {
		return mediarefs.Referenced(ctx, deps.MongoDatabase)
	}
	sweep := workers.NewMediaSweep(media, refs, logger, appCfg.MediaSweepInterval, appCfg.MediaSweepGrace, timeouts.Long())
	sweep.Start()

	shared.mu.Lock()
	shared.sweep = sweep
	shared.mu.Unlock()
	return nil
}

// realtimeServices returns the hub and publisher, creating an in-process
// hub if Startup has not run.
func realtimeServices(logger *zap.Logger) (*realtime.Hub, realtime.Publisher) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.hub == nil {
		shared.hub = realtime.NewHub(logger)
		shared.events = shared.hub
	}
	return shared.hub, shared.events
}

func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
}

// ensureAdmin creates the configured admin, or promotes an existing user
// with that email. A new admin needs a password.
func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, auditLog *auditlog.Logger, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, appCfg.AdminEmail)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if existing == nil && appCfg.AdminPassword == "" {
		return fmt.Errorf("admin_password is required to create admin %q", appCfg.AdminEmail)
	}

	u, created, err := users.EnsureAdmin(ctx, appCfg.AdminName, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminPhone)
	if err != nil {
		return err
	}
	if created || existing.Role != u.Role {
		auditLog.AdminBootstrapped(ctx, u.ID, u.Email, created)
	}
	logger.Info("admin ready", zap.String("email", u.Email), zap.Bool("created", created))
	return nil
}
