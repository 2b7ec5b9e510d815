// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for StackIt.
//
// These values come from environment variables (STACKIT_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings (ports, TLS, log level); everything
// the API itself needs lives here and is passed to the lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Allowed browser origins; "*" allows any.
	CORSOrigins []string

	// Per-IP request allowance: RateLimitRequests per RateLimitWindow.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Proxies (IPs or CIDRs) whose X-Forwarded-For / X-Real-IP are believed.
	TrustedProxies []string

	// Upload storage: "local" or "s3"
	StorageType      string
	StorageLocalPath string // e.g. ./uploads
	StorageLocalURL  string // URL prefix local files are served from, e.g. /uploads

	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageS3Endpoint  string // set for MinIO and other S3-compatible stores
	StorageS3AccessKey string // blank uses the default AWS credential chain
	StorageS3SecretKey string
	StorageS3PublicURL string // CDN or public bucket URL used in returned links

	MaxUploadBytes int64

	// Audit logging modes: all | db | log | off
	AuditLogAuth       string
	AuditLogAdmin      string
	AuditRetentionDays int // 0 keeps events forever

	// Account promoted to admin on every startup, if it exists.
	AdminEmail string
}
