// Package txn runs a function inside a MongoDB multi-document transaction.
//
// Standalone servers (and some hosted variants) do not support transactions.
// Run detects that case and executes the function once without a session so
// the same code path works in development and against a replica set.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on db's client. The driver retries fn
// on transient transaction errors (write conflicts between concurrent
// transactions), so fn must be safe to re-run.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithout(ctx, log, fn, err)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runWithout(ctx, log, fn, err)
	}
	return err
}

func runWithout(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error, cause error) error {
	if log != nil {
		log.Debug("transactions not supported; running without", zap.Error(cause))
	}
	return fn(ctx)
}

// IsNotSupported reports whether err indicates the server cannot run
// transactions (standalone mongod, unsupported session state).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, standalone, OperationNotSupportedInTransaction
			return true
		}
	}

	s := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(s, kw) {
			hits++
		}
	}
	return hits >= 2
}
