package upload

import (
	"log/slog"

	"github.com/applicant-intake/internal/config"
	azblobinfra "github.com/applicant-intake/internal/infrastructure/azblob"
	"github.com/applicant-intake/internal/infrastructure/localdisk"
	s3infra "github.com/applicant-intake/internal/infrastructure/s3"
)

// Resolve picks the Backend once from configuration: presigned object storage,
// then blob storage, then local disk outside production. With none available
// every call fails as unavailable.
func Resolve(cfg *config.Config) Backend {
	if cfg.ObjectStorage.Configured() {
		store := s3infra.NewStore(s3infra.NewClient(cfg.ObjectStorage), cfg.ObjectStorage.Bucket)
		slog.Info("upload backend resolved", "mode", "presigned", "bucket", cfg.ObjectStorage.Bucket)
		return NewPresigned(store, cfg.ObjectStorage.PublicURL)
	}
	if cfg.BlobStorage.Configured() {
		store, err := azblobinfra.NewStore(cfg.BlobStorage)
		if err == nil {
			slog.Info("upload backend resolved", "mode", "blob", "container", cfg.BlobStorage.Container)
			return NewBlob(store, cfg.BlobStorage.PublicURL)
		}
		slog.Error("blob storage configured but unusable", "err", err)
	}
	if !cfg.IsProduction() {
		slog.Info("upload backend resolved", "mode", "local", "dir", cfg.LocalUploadDir)
		return NewLocal(localdisk.NewStore(cfg.LocalUploadDir))
	}
	slog.Warn("no upload backend configured")
	return unavailable{}
}
