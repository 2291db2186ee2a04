package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixelcrate/pixelcrate-server/internal/model"
)

var _ model.PhotoStore = (*PhotoRepository)(nil)

const photoColumns = `id, content_hash, storage_key, file_url, original_name, mime_type, size_bytes, description, owners, created_at, updated_at`

type PhotoRepository struct {
	db *Connection
}

func NewPhotoRepository(db *Connection) *PhotoRepository {
	return &PhotoRepository{
		db: db,
	}
}

// Create inserts a new photo. The unique index on content_hash is the
// authoritative guard against concurrent first uploads of identical bytes:
// the losing writer gets ErrHashExists and falls back to the add-owner path.
func (r *PhotoRepository) Create(ctx context.Context, photo model.Photo) (model.Photo, error) {
	query := `
		INSERT INTO photos (id, content_hash, storage_key, file_url, original_name, mime_type, size_bytes, description, owners)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (content_hash) DO NOTHING
		RETURNING ` + photoColumns

	saved, err := scanPhoto(r.db.QueryRow(ctx, query,
		photo.ID, photo.ContentHash, photo.StorageKey, photo.FileURL,
		photo.OriginalName, photo.MimeType, photo.SizeBytes, photo.Description,
		photo.Owners,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Photo{}, model.ErrHashExists
		}
		return model.Photo{}, fmt.Errorf("failed to create photo: %w", err)
	}

	return saved, nil
}

func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Photo{}, model.ErrNotFound
		}
		return model.Photo{}, fmt.Errorf("failed to get photo by id: %w", err)
	}

	return photo, nil
}

func (r *PhotoRepository) GetByHash(ctx context.Context, contentHash string) (model.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE content_hash = $1`

	photo, err := scanPhoto(r.db.QueryRow(ctx, query, contentHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Photo{}, model.ErrNotFound
		}
		return model.Photo{}, fmt.Errorf("failed to get photo by hash: %w", err)
	}

	return photo, nil
}

// AddOwnerByHash adds userID to the owner set of the photo with the given
// content hash. The CASE keeps the statement idempotent: a repeat upload by
// an existing owner leaves the row untouched. The owner-set expressions are
// evaluated on the locked current row, so concurrent additions serialize.
func (r *PhotoRepository) AddOwnerByHash(ctx context.Context, contentHash string, userID uuid.UUID) (model.Photo, error) {
	query := `
		UPDATE photos
		SET owners = CASE WHEN $2 = ANY(owners) THEN owners ELSE array_append(owners, $2) END,
		    updated_at = CASE WHEN $2 = ANY(owners) THEN updated_at ELSE NOW() END
		WHERE content_hash = $1
		RETURNING ` + photoColumns

	photo, err := scanPhoto(r.db.QueryRow(ctx, query, contentHash, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Photo{}, model.ErrNotFound
		}
		return model.Photo{}, fmt.Errorf("failed to add owner: %w", err)
	}

	return photo, nil
}

// RemoveOwner removes userID from the photo's owner set and, when the set
// drops to empty, deletes the row in the same transaction. The row lock taken
// by the UPDATE serializes concurrent releases, so only the release that
// observes the 1 -> 0 transition reports an empty owner set.
func (r *PhotoRepository) RemoveOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (model.Photo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Photo{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE photos
		SET owners = array_remove(owners, $2), updated_at = NOW()
		WHERE id = $1 AND $2 = ANY(owners)
		RETURNING ` + photoColumns

	photo, err := scanPhoto(tx.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM photos WHERE id = $1)`, id).Scan(&exists); err != nil {
				return model.Photo{}, fmt.Errorf("failed to check photo existence: %w", err)
			}
			if exists {
				return model.Photo{}, model.ErrNotOwner
			}
			return model.Photo{}, model.ErrNotFound
		}
		return model.Photo{}, fmt.Errorf("failed to remove owner: %w", err)
	}

	if len(photo.Owners) == 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id); err != nil {
			return model.Photo{}, fmt.Errorf("failed to delete orphaned photo: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Photo{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return photo, nil
}

func (r *PhotoRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]model.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE owners @> ARRAY[$1]::uuid[]
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos by owner: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

func scanPhoto(row pgx.Row) (model.Photo, error) {
	var photo model.Photo
	err := row.Scan(
		&photo.ID, &photo.ContentHash, &photo.StorageKey, &photo.FileURL,
		&photo.OriginalName, &photo.MimeType, &photo.SizeBytes, &photo.Description,
		&photo.Owners, &photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		return model.Photo{}, err
	}
	return photo, nil
}
