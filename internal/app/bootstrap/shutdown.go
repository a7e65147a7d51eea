// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background workers, closes socket clients, then tears
// down the Redis and MongoDB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	shared.mu.Lock()
	if shared.sweep != nil {
		shared.sweep.Stop()
		shared.sweep = nil
	}
	if shared.stopRelay != nil {
		shared.stopRelay()
		shared.stopRelay = nil
	}
	if shared.hub != nil {
		logger.Info("closing socket clients", zap.Int("clients", shared.hub.Count()))
		shared.hub.Close()
	}
	shared.mu.Unlock()

	var errs []error
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Error("Redis close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
