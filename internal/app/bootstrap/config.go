// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stackit/internal/app/system/auditlog"
	"github.com/dalemusser/stackit/internal/app/system/ratelimit"
	"github.com/dalemusser/stackit/internal/app/system/uploads"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is the default signing secret. ValidateConfig refuses it in
// production.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for StackIt.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: STACKIT_MONGO_URI, STACKIT_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stackit", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Bearer token signing secret (must be strong in production)"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Bearer token lifetime (e.g., 24h, 168h)"},

	{Name: "cors_origins", Default: "http://localhost:5173,http://localhost:5174,http://localhost:3000", Desc: "Comma-separated allowed CORS origins, or *"},

	{Name: "rate_limit_requests", Default: 100, Desc: "Requests allowed per client IP per window"},
	{Name: "rate_limit_window", Default: "15m", Desc: "Rate limit window (e.g., 15m)"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs/CIDRs allowed to set X-Forwarded-For"},

	// Upload storage
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded images"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local files"},

	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "stackit/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3 endpoint (MinIO etc.)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank uses the AWS credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for stored objects"},

	{Name: "max_upload_bytes", Default: uploads.DefaultMaxBytes, Desc: "Maximum size of a single uploaded image"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention_days", Default: 90, Desc: "Days to keep audit events (0 keeps them forever)"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of an existing account to promote to admin on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STACKIT_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STACKIT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 7*24*time.Hour),

		CORSOrigins: splitList(appValues.String("cors_origins")),

		RateLimitRequests: appValues.Int("rate_limit_requests"),
		RateLimitWindow:   appValues.Duration("rate_limit_window", 15*time.Minute),
		TrustedProxies:    splitList(appValues.String("trusted_proxies")),

		StorageType:      strings.ToLower(appValues.String("storage_type")),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey: appValues.String("storage_s3_access_key"),
		StorageS3SecretKey: appValues.String("storage_s3_secret_key"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		MaxUploadBytes: int64(appValues.Int("max_upload_bytes")),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditRetentionDays: appValues.Int("audit_retention_days"),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database is required")
	}

	if strings.TrimSpace(appCfg.JWTSecret) == "" {
		return errors.New("jwt_secret is required")
	}
	if appCfg.JWTSecret == devJWTSecret {
		if coreCfg != nil && coreCfg.Env == "prod" {
			return errors.New("jwt_secret must be changed from the development default in production")
		}
		logger.Warn("using the development jwt_secret; set STACKIT_JWT_SECRET before deploying")
	}

	if appCfg.RateLimitRequests <= 0 || appCfg.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit must be positive (got %d per %s)", appCfg.RateLimitRequests, appCfg.RateLimitWindow)
	}
	if _, err := ratelimit.ParseProxies(appCfg.TrustedProxies); err != nil {
		return err
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" || !strings.HasPrefix(appCfg.StorageLocalURL, "/") {
			return errors.New("local storage requires storage_local_path and a storage_local_url starting with /")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return errors.New("s3 storage requires storage_s3_bucket and storage_s3_region")
		}
		if (appCfg.StorageS3AccessKey == "") != (appCfg.StorageS3SecretKey == "") {
			return errors.New("storage_s3_access_key and storage_s3_secret_key must be set together")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want local or s3)", appCfg.StorageType)
	}

	for name, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch mode {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", name, mode)
		}
	}
	if appCfg.AuditRetentionDays < 0 {
		return errors.New("audit_retention_days cannot be negative")
	}

	return nil
}
