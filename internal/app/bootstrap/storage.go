// internal/app/bootstrap/storage.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/stackit/internal/app/system/uploads"
	"go.uber.org/zap"
)

// newStorage builds the upload backend selected by storage_type. The local
// backend is also returned separately so its files can be served.
func newStorage(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (uploads.Store, *uploads.Local, error) {
	switch appCfg.StorageType {
	case "s3":
		s3, err := uploads.NewS3(ctx, uploads.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			Endpoint:  appCfg.StorageS3Endpoint,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
			PublicURL: appCfg.StorageS3PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("upload storage: s3",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("region", appCfg.StorageS3Region))
		return s3, nil, nil

	case "local", "":
		local, err := uploads.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("upload storage: local",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", local.BaseURL()))
		return local, local, nil
	}
	return nil, nil, fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
}
