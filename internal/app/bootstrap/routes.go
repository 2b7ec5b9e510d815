// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	adminfeature "github.com/dalemusser/stackit/internal/app/features/admin"
	answersfeature "github.com/dalemusser/stackit/internal/app/features/answers"
	auditlogfeature "github.com/dalemusser/stackit/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/stackit/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stackit/internal/app/features/health"
	loginfeature "github.com/dalemusser/stackit/internal/app/features/login"
	notificationsfeature "github.com/dalemusser/stackit/internal/app/features/notifications"
	profilefeature "github.com/dalemusser/stackit/internal/app/features/profile"
	questionsfeature "github.com/dalemusser/stackit/internal/app/features/questions"
	searchfeature "github.com/dalemusser/stackit/internal/app/features/search"
	statsfeature "github.com/dalemusser/stackit/internal/app/features/stats"
	uploadfeature "github.com/dalemusser/stackit/internal/app/features/upload"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	"github.com/dalemusser/stackit/internal/app/store/audit"
	notificationstore "github.com/dalemusser/stackit/internal/app/store/notifications"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/acceptance"
	"github.com/dalemusser/stackit/internal/app/system/auditlog"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/notify"
	"github.com/dalemusser/stackit/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for StackIt.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every API route lives under /api; the
// health check is also served at /health for load balancers.
//
// The notification dispatcher and acceptance protocol are built once here
// and shared by every handler that needs them: the acceptance lock is
// per-process, so a second instance would not serialize against the first.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.StackItMongoDatabase

	tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token service init failed", zap.Error(err))
		return nil, err
	}
	authMgr := auth.NewManager(tokens, userstore.New(db), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	storage, local, err := newStorage(ctx, appCfg, logger)
	if err != nil {
		logger.Error("upload storage init failed", zap.Error(err))
		return nil, err
	}

	audLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	dispatcher := notify.New(notificationstore.New(db), userstore.New(db), questionstore.New(db), logger)
	protocol := acceptance.New(db, questionstore.New(db), answerstore.New(db), dispatcher, logger)

	proxies, err := ratelimit.ParseProxies(appCfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.New(appCfg.RateLimitRequests, appCfg.RateLimitWindow)
	loginLimiter := ratelimit.NewLoginLimiter()
	if deps.bg != nil {
		deps.bg.limiter = limiter
		deps.bg.loginLimiter = loginLimiter
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(ratelimit.RealIP(proxies))
	r.Use(ratelimit.Middleware(limiter, logger))

	// Resolve the bearer token (if any) into the caller's identity.
	r.Use(authMgr.LoadBearerUser)

	r.NotFound(errorsfeature.RouteNotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.StackItMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if local != nil {
		r.Handle(local.BaseURL()+"/*", local.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Mount("/health", healthfeature.Routes(healthHandler))

		loginHandler := loginfeature.NewHandler(db, tokens, loginLimiter, audLog, errLog, logger)
		api.Mount("/auth", loginfeature.Routes(loginHandler))

		questionsHandler := questionsfeature.NewHandler(db, errLog, logger)
		api.Mount("/questions", questionsfeature.Routes(questionsHandler))

		answersHandler := answersfeature.NewHandler(db, protocol, dispatcher, errLog, logger)
		api.Mount("/answers", answersfeature.Routes(answersHandler))

		notificationsHandler := notificationsfeature.NewHandler(dispatcher, errLog, logger)
		api.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

		profileHandler := profilefeature.NewHandler(db, storage, appCfg.MaxUploadBytes, errLog, logger)
		api.Mount("/users", profilefeature.Routes(profileHandler))

		uploadHandler := uploadfeature.NewHandler(storage, appCfg.MaxUploadBytes, errLog, logger)
		api.Mount("/upload-image", uploadfeature.Routes(uploadHandler))

		searchHandler := searchfeature.NewHandler(db, errLog, logger)
		api.Mount("/search", searchfeature.Routes(searchHandler))

		statsHandler := statsfeature.NewHandler(db, errLog, logger)
		api.Mount("/stats", statsfeature.Routes(statsHandler))

		// Moderation
		auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
		api.Mount("/admin/audit", auditlogfeature.Routes(auditHandler))

		adminHandler := adminfeature.NewHandler(db, audLog, errLog, logger)
		api.Mount("/admin", adminfeature.Routes(adminHandler))
	})

	return r, nil
}
