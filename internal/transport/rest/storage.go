package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/apexlens/backoffice/internal/service/storage"
)

// storageService defines the minimal interface needed by StorageHandler.
type storageService interface {
	Usage(ctx context.Context) (*storage.Usage, error)
}

// StorageHandler serves the admin storage accounting endpoint.
type StorageHandler struct {
	svc storageService
	log *slog.Logger
}

// NewStorageHandler creates a StorageHandler.
func NewStorageHandler(svc storageService, logger *slog.Logger) *StorageHandler {
	return &StorageHandler{svc: svc, log: logger.With("handler", "storage")}
}

type storageUsageResponse struct {
	UsedBytes  int64   `json:"usedBytes"`
	QuotaBytes int64   `json:"quotaBytes"`
	Percent    float64 `json:"percent"`
}

// Usage handles GET /admin/storage.
func (h *StorageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.svc.Usage(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, storageUsageResponse{
		UsedBytes:  usage.UsedBytes,
		QuotaBytes: usage.QuotaBytes,
		Percent:    usage.Percent,
	})
}
