package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pixelcrate/pixelcrate-server/internal/digest"
	"github.com/pixelcrate/pixelcrate-server/internal/logger"
	"github.com/pixelcrate/pixelcrate-server/internal/model"
)

// ingestAttempts bounds the dedup/create loop under registry churn.
const ingestAttempts = 3

// PhotoConfig contains ingestion constraints.
type PhotoConfig struct {
	MaxSizeBytes     int64
	AllowedMimeTypes []string
	StoreTimeout     time.Duration
}

// Photo implements the ingestion pipeline and the ownership service over
// the photo registry and the asset store.
type Photo struct {
	photoStore   model.PhotoStore
	storage      model.Storage
	maxSizeBytes int64
	allowedMime  map[string]struct{}
	storeTimeout time.Duration
	logger       *logger.Logger
}

func NewPhoto(
	photoStore model.PhotoStore,
	storage model.Storage,
	cfg PhotoConfig,
	logger *logger.Logger,
) *Photo {
	allowed := make(map[string]struct{}, len(cfg.AllowedMimeTypes))
	for _, m := range cfg.AllowedMimeTypes {
		allowed[m] = struct{}{}
	}
	return &Photo{
		photoStore:   photoStore,
		storage:      storage,
		maxSizeBytes: cfg.MaxSizeBytes,
		allowedMime:  allowed,
		storeTimeout: cfg.StoreTimeout,
		logger:       logger,
	}
}

// Ingest validates and admits one upload. Identical bytes uploaded by N
// users are stored exactly once: the content hash is the dedup key, and a
// repeat upload only adds the uploader to the existing photo's owner set.
func (s *Photo) Ingest(ctx context.Context, params model.IngestParams) (model.Photo, error) {
	if err := s.validate(params); err != nil {
		return model.Photo{}, err
	}

	contentHash := digest.Sum(params.Data)

	for attempt := 0; attempt < ingestAttempts; attempt++ {
		photo, err := s.photoStore.AddOwnerByHash(ctx, contentHash, params.UploaderID)
		if err == nil {
			s.logger.Info("duplicate upload resolved to existing photo",
				"photo_id", photo.ID, "uploader_id", params.UploaderID)
			return photo, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return model.Photo{}, &model.PersistenceError{Err: err}
		}

		// Never-seen-before content: store the asset, then register.
		// The registry is only written after storage succeeds, so a photo
		// can never point at a non-existent asset.
		key := objectKey(contentHash)
		url, err := s.storeAsset(ctx, key, params)
		if err != nil {
			return model.Photo{}, &model.StorageError{Err: err}
		}

		photo = model.Photo{
			ID:           uuid.New(),
			ContentHash:  contentHash,
			StorageKey:   key,
			FileURL:      url,
			OriginalName: params.OriginalName,
			MimeType:     params.MimeType,
			SizeBytes:    int64(len(params.Data)),
			Description:  params.Description,
			Owners:       []uuid.UUID{params.UploaderID},
		}

		saved, err := s.photoStore.Create(ctx, photo)
		if err == nil {
			return saved, nil
		}
		if errors.Is(err, model.ErrHashExists) {
			// Lost the first-upload race. The object key is derived from
			// the content hash, so the winner's asset and ours are the same
			// object; fall back to the add-owner path.
			continue
		}

		// Registry write failed after a successful store. The orphaned
		// asset is left for offline reconciliation: a synchronous remote
		// delete can itself fail.
		s.logger.Error("registry write failed after store, asset orphaned",
			"storage_key", key, "content_hash", contentHash, "error", err)
		return model.Photo{}, &model.PersistenceError{Err: err}
	}

	return model.Photo{}, &model.PersistenceError{
		Err: fmt.Errorf("ingest did not converge after %d attempts", ingestAttempts),
	}
}

// GetOwned returns the photo with the given ID when userID is one of its
// owners. Non-owners get ErrNotOwner: ownership scopes all reads.
func (s *Photo) GetOwned(ctx context.Context, photoID uuid.UUID, userID uuid.UUID) (model.Photo, error) {
	photo, err := s.photoStore.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Photo{}, model.ErrNotFound
		}
		return model.Photo{}, &model.PersistenceError{Err: err}
	}

	if !photo.OwnedBy(userID) {
		return model.Photo{}, model.ErrNotOwner
	}

	return photo, nil
}

// ListOwned returns all photos owned by userID, newest first.
func (s *Photo) ListOwned(ctx context.Context, userID uuid.UUID) ([]model.Photo, error) {
	photos, err := s.photoStore.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos by owner: %w", err)
	}

	return photos, nil
}

// Release removes userID's ownership of the photo. When the last owner
// departs, the registry record is removed and the backing asset is deleted
// best-effort; an adapter failure is logged, never surfaced.
func (s *Photo) Release(ctx context.Context, photoID uuid.UUID, userID uuid.UUID) (model.ReleaseOutcome, error) {
	photo, err := s.photoStore.RemoveOwner(ctx, photoID, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrNotOwner) {
			return "", err
		}
		return "", &model.PersistenceError{Err: err}
	}

	if len(photo.Owners) > 0 {
		return model.ReleaseRetained, nil
	}

	deleteCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.storage.Delete(deleteCtx, photo.StorageKey); err != nil {
		s.logger.Error("failed to delete asset from storage",
			"storage_key", photo.StorageKey, "photo_id", photoID, "error", err)
	}

	return model.ReleaseDeleted, nil
}

func (s *Photo) validate(params model.IngestParams) error {
	if len(params.Data) == 0 {
		return model.NewValidationError("file is empty")
	}
	if int64(len(params.Data)) > s.maxSizeBytes {
		return model.NewValidationError("file exceeds maximum size of %d bytes", s.maxSizeBytes)
	}
	if _, ok := s.allowedMime[params.MimeType]; !ok {
		return model.NewValidationError("mime type %q is not allowed", params.MimeType)
	}
	return nil
}

func (s *Photo) storeAsset(ctx context.Context, key string, params model.IngestParams) (string, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.storage.Store(storeCtx, key, bytes.NewReader(params.Data), int64(len(params.Data)), params.MimeType)
}

// objectKey derives a content-addressed storage key. Racing first uploads
// of identical bytes target the same object, which keeps the conflict path
// free of compensating deletes.
func objectKey(contentHash string) string {
	return fmt.Sprintf("photos/%s/%s", contentHash[:2], contentHash)
}
