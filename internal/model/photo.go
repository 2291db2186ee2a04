package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PhotoStore defines persistence operations for the photo registry.
//
// Implementations must guarantee content_hash uniqueness and perform
// AddOwnerByHash and RemoveOwner atomically per photo: all owner-set
// coordination is pushed down to the backing store.
type PhotoStore interface {
	// Create inserts a new photo. Returns ErrHashExists when a photo with
	// the same content hash was registered concurrently.
	Create(ctx context.Context, photo Photo) (Photo, error)
	GetByID(ctx context.Context, id uuid.UUID) (Photo, error)
	GetByHash(ctx context.Context, contentHash string) (Photo, error)
	// AddOwnerByHash adds userID to the owner set of the photo with the
	// given content hash. Idempotent when the user already owns it.
	AddOwnerByHash(ctx context.Context, contentHash string, userID uuid.UUID) (Photo, error)
	// RemoveOwner removes userID from the photo's owner set and deletes the
	// photo row atomically when the set becomes empty. Returns
	// the post-update photo; ErrNotFound if the photo does not exist,
	// ErrNotOwner if userID is not in the owner set.
	RemoveOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (Photo, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]Photo, error)
}

// Photo represents a deduplicated stored image shared by its owners.
type Photo struct {
	ID           uuid.UUID
	ContentHash  string
	StorageKey   string
	FileURL      string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Description  string
	Owners       []uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnedBy reports whether userID is in the photo's owner set.
func (p Photo) OwnedBy(userID uuid.UUID) bool {
	for _, id := range p.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

// IngestParams contains parameters to ingest a single upload.
type IngestParams struct {
	UploaderID   uuid.UUID
	Data         []byte
	MimeType     string
	OriginalName string
	Description  string
}

// ReleaseOutcome reports what a release of ownership resulted in.
type ReleaseOutcome string

const (
	// ReleaseRetained means ownership was released but the photo remains
	// for other owners.
	ReleaseRetained ReleaseOutcome = "retained"
	// ReleaseDeleted means the last owner departed and the photo with its
	// backing asset was deleted.
	ReleaseDeleted ReleaseOutcome = "deleted"
)
