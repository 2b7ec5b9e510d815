// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stackit/internal/app/system/ratelimit"
	"github.com/dalemusser/stackit/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	StackItMongoClient   *mongo.Client
	StackItMongoDatabase *mongo.Database

	// bg tracks long-lived helpers started by later hooks so Shutdown can
	// stop them. The hooks receive DBDeps by value, hence the pointer.
	bg *background
}

type background struct {
	retention    *workers.AuditRetention
	limiter      *ratelimit.Limiter
	loginLimiter *ratelimit.LoginLimiter
}
