package images

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/umbra-img/umbra/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the upload/enhance/download flow.
type Handler struct {
	logger      *slog.Logger
	store       *FileStore
	processor   *Processor
	registry    *Registry
	maxUpload   int64
	requireAuth func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. requireAuth guards the upload
// endpoint; downloads and cleanup are open, matching the original contract.
func NewHandler(logger *slog.Logger, store *FileStore, processor *Processor, registry *Registry, maxUpload int64, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:      logger,
		store:       store,
		processor:   processor,
		registry:    registry,
		maxUpload:   maxUpload,
		requireAuth: requireAuth,
	}
}

// MountRoutes registers image routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/models", h.handleModels)
	r.With(h.requireAuth).Post("/enhance", h.handleEnhance)
	r.Get("/download/{fileID}", h.handleDownload)
	r.Delete("/cleanup/{fileID}", h.handleCleanup)
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"models": h.registry.Available(),
	})
}

func (h *Handler) handleEnhance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "missing file upload")
		return
	}
	defer func() { _ = file.Close() }()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "file must be an image")
		return
	}

	model, err := h.registry.Resolve(ModelLOLReal)
	if err != nil {
		h.logger.Error("resolve model", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	fileID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}

	uploadPath, err := h.store.SaveUpload(fileID, ext, file)
	if err != nil {
		h.logger.Error("save upload", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	input, err := os.Open(uploadPath)
	if err != nil {
		h.cleanupAfterFailure(fileID)
		h.logger.Error("reopen upload", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	defer func() { _ = input.Close() }()

	output, err := os.Create(h.store.OutputPath(fileID, ext))
	if err != nil {
		h.cleanupAfterFailure(fileID)
		h.logger.Error("create output", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	defer func() { _ = output.Close() }()

	if err := h.processor.Enhance(input, output, ext); err != nil {
		h.cleanupAfterFailure(fileID)
		h.logger.Error("enhance image", slog.String("file_id", fileID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "processing failed")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"file_id":           fileID,
		"original_filename": header.Filename,
		"download_url":      "/download/" + fileID,
		"model_used":        model.ID,
	})
}

// cleanupAfterFailure removes partial files so a failed enhancement leaves
// nothing behind.
func (h *Handler) cleanupAfterFailure(fileID string) {
	if err := h.store.Remove(fileID); err != nil {
		h.logger.Warn("cleanup after failure", slog.String("file_id", fileID), slog.Any("error", err))
	}
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	path, ok := h.store.FindOutput(fileID)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "enhanced image not found")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="enhanced_`+fileID+filepath.Ext(path)+`"`)
	http.ServeFile(w, r, path)
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	if !validFileID(fileID) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid file id")
		return
	}
	if err := h.store.Remove(fileID); err != nil {
		h.logger.Error("cleanup files", slog.String("file_id", fileID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "cleanup failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Files cleaned up",
	})
}
