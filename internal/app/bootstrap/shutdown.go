// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background helpers and tears down DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if bg := deps.bg; bg != nil {
		if bg.retention != nil {
			bg.retention.Stop()
		}
		if bg.limiter != nil {
			bg.limiter.Close()
		}
		if bg.loginLimiter != nil {
			bg.loginLimiter.Close()
		}
	}

	if deps.StackItMongoClient != nil {
		logger.Info("disconnecting StackIt MongoDB client")
		if err := deps.StackItMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
