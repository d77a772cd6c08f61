package resident

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brgysanroque/registry/internal/storage"
)

// Handler exposes the resident endpoints.
type Handler struct {
	service  *Service
	archiver storage.Uploader
}

// NewHandler creates the handler. The archiver receives a copy of every
// backup artifact; pass storage.NoopUploader to disable archival.
func NewHandler(service *Service, archiver storage.Uploader) *Handler {
	return &Handler{service: service, archiver: archiver}
}

// HandleListPublic serves the unauthenticated read-only listing.
func (h *Handler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r)
}

// HandleList serves the authenticated listing.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	residents, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if residents == nil {
		residents = []Resident{}
	}
	writeJSON(w, http.StatusOK, residents)
}

// HandleCreate registers a manually entered resident.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	stored, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Resident saved successfully",
		"resident": stored,
	})
}

// HandleUpdate applies a partial edit identified by the internal key.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key, err := uuid.Parse(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid resident key")
		return
	}

	var up UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	stored, err := h.service.Update(r.Context(), key, up)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Resident updated successfully",
		"resident": stored,
	})
}

// HandleDelete removes the record identified by the internal key.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	key, err := uuid.Parse(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid resident key")
		return
	}

	if err := h.service.Delete(r.Context(), key); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Resident deleted successfully"})
}

// HandleQRLookup resolves a short ID scanned from a QR code. Public by design.
func (h *Handler) HandleQRLookup(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.FindByPublicID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resident not found")
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleInsights serves the aggregated demographics.
func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	ins, err := h.service.Insights(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

// HandleUpload imports residents in bulk from a multipart CSV file.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "No file uploaded")
		return
	}
	defer file.Close()
	// Drops any temp file multipart parsing spilled to disk, import outcome
	// notwithstanding.
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	result, err := h.service.ImportCSV(r.Context(), file)
	if errors.Is(err, ErrNoNewRecords) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":     "NO_NEW_RECORDS",
			"message":  "No new residents were added. All rows are duplicates or invalid.",
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
			"rejected": result.Rejected,
		})
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "CSV data imported successfully",
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"rejected": result.Rejected,
	})
}

// HandleBackup streams the collection as a downloadable CSV artifact.
func (h *Handler) HandleBackup(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.service.Backup(r.Context())
	if errors.Is(err, ErrEmptyCollection) {
		writeError(w, http.StatusNotFound, "EMPTY_COLLECTION", "No resident data to backup")
		return
	}
	if err != nil {
		writeInternalError(w, err)
		return
	}

	h.archive(r.Context(), filename, data)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// archive sends a copy of the backup off-site. Failures never block the
// download itself.
func (h *Handler) archive(ctx context.Context, filename string, data []byte) {
	result, err := h.archiver.Upload(ctx, storage.UploadInput{
		Key:         "backups/" + filename,
		Body:        data,
		ContentType: "text/csv",
	})
	if errors.Is(err, storage.ErrNotConfigured) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("backup archival failed")
		return
	}
	log.Info().Str("url", result.URL).Msg("backup archived")
}

func writeServiceError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "VALIDATION", validation.Error())
	case errors.Is(err, ErrDuplicate):
		writeError(w, http.StatusBadRequest, "DUPLICATE", ErrDuplicate.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resident not found")
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("resident handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"code": code, "message": message})
}
