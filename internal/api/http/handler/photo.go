package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pixelcrate/pixelcrate-server/internal/api/http/middleware"
	"github.com/pixelcrate/pixelcrate-server/internal/logger"
	"github.com/pixelcrate/pixelcrate-server/internal/model"
	"github.com/pixelcrate/pixelcrate-server/internal/service"
)

// multipartOverhead is slack on top of the max photo size for the other
// form fields when limiting the request body.
const multipartOverhead = 64 * 1024

// PhotoHandler handles photo upload, listing and release requests.
type PhotoHandler struct {
	svc          *service.Photo
	maxSizeBytes int64
	logger       *logger.Logger
}

func NewPhotoHandler(svc *service.Photo, maxSizeBytes int64, logger *logger.Logger) *PhotoHandler {
	return &PhotoHandler{
		svc:          svc,
		maxSizeBytes: maxSizeBytes,
		logger:       logger,
	}
}

type photoResponse struct {
	ID           string    `json:"id"`
	FileURL      string    `json:"file_url"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type releaseResponse struct {
	Outcome string `json:"outcome"`
}

func toPhotoResponse(p model.Photo) photoResponse {
	return photoResponse{
		ID:           p.ID.String(),
		FileURL:      p.FileURL,
		OriginalName: p.OriginalName,
		MimeType:     p.MimeType,
		SizeBytes:    p.SizeBytes,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
	}
}

// Upload handles POST /api/photos. The photo is sent as multipart form
// field "photo" with an optional "description" field.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authenticated user")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxSizeBytes + multipartOverhead); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "Invalid or oversized multipart body")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "Form field \"photo\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNREADABLE_FILE", "Failed to read uploaded file")
		return
	}

	photo, err := h.svc.Ingest(r.Context(), model.IngestParams{
		UploaderID:   userID,
		Data:         data,
		MimeType:     header.Header.Get("Content-Type"),
		OriginalName: header.Filename,
		Description:  r.FormValue("description"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.logger.Info("photo ingested",
		"photo_id", photo.ID,
		"uploader_id", userID,
		"size_bytes", photo.SizeBytes,
		"owners", len(photo.Owners),
	)

	writeJSON(w, http.StatusCreated, toPhotoResponse(photo))
}

// List handles GET /api/photos.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authenticated user")
		return
	}

	photos, err := h.svc.ListOwned(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, toPhotoResponse(p))
	}

	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/photos/{id}, scoped to the photo's owners.
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authenticated user")
		return
	}

	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Photo ID must be a UUID")
		return
	}

	photo, err := h.svc.GetOwned(r.Context(), photoID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPhotoResponse(photo))
}

// Release handles DELETE /api/photos/{id}: it removes the caller's
// ownership and reports whether the photo was retained for other owners or
// fully deleted.
func (h *PhotoHandler) Release(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authenticated user")
		return
	}

	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Photo ID must be a UUID")
		return
	}

	outcome, err := h.svc.Release(r.Context(), photoID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.logger.Info("photo released", "photo_id", photoID, "user_id", userID, "outcome", outcome)

	writeJSON(w, http.StatusOK, releaseResponse{Outcome: string(outcome)})
}
