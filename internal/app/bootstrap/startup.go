// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stackit/internal/app/store/audit"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("overrides", n),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
		return err
	}

	if appCfg.AuditRetentionDays > 0 && deps.bg != nil {
		retention := time.Duration(appCfg.AuditRetentionDays) * 24 * time.Hour
		w := workers.NewAuditRetention(audit.New(deps.StackItMongoDatabase), logger, workers.DefaultRetentionInterval, retention)
		w.Start()
		deps.bg.retention = w
	}
	return nil
}

// ensureAdmin promotes the account registered with email to admin. A blank
// email does nothing; an unknown email is logged and skipped so a fresh
// deployment can start before the admin has registered.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}

	u, err := userstore.New(deps.StackItMongoDatabase).PromoteByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			logger.Warn("admin_email has no account yet; register it and restart",
				zap.String("email", email))
			return nil
		}
		logger.Error("promote admin failed", zap.String("email", email), zap.Error(err))
		return err
	}

	logger.Info("admin account ensured",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username))
	return nil
}
