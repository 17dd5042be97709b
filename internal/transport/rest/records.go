package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/apexlens/backoffice/internal/provider"
)

// recordsService defines the minimal interface needed by RecordsHandler.
type recordsService interface {
	Search(ctx context.Context, query string) ([]provider.Property, error)
	Get(ctx context.Context, id string) (*provider.Property, error)
	Image(ctx context.Context, id string) (*provider.PropertyImage, error)
}

// RecordsHandler serves the public property-records proxy endpoints.
type RecordsHandler struct {
	svc recordsService
	log *slog.Logger
}

// NewRecordsHandler creates a RecordsHandler.
func NewRecordsHandler(svc recordsService, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{svc: svc, log: logger.With("handler", "records")}
}

type propertyResponse struct {
	ID            string  `json:"id"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Zip           string  `json:"zip"`
	Beds          int     `json:"beds"`
	Baths         float64 `json:"baths"`
	SquareFeet    int     `json:"squareFeet"`
	YearBuilt     int     `json:"yearBuilt"`
	LastSalePrice int64   `json:"lastSalePrice"`
	LastSaleDate  string  `json:"lastSaleDate,omitempty"`
}

func toPropertyResponse(p *provider.Property) propertyResponse {
	return propertyResponse{
		ID:            p.ID,
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		Zip:           p.Zip,
		Beds:          p.Beds,
		Baths:         p.Baths,
		SquareFeet:    int(p.SquareFeet),
		YearBuilt:     p.YearBuilt,
		LastSalePrice: p.LastSalePrice,
		LastSaleDate:  p.LastSaleDate,
	}
}

// Search handles GET /records/search?q= (public, rate limited).
func (h *RecordsHandler) Search(w http.ResponseWriter, r *http.Request) {
	props, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]propertyResponse, 0, len(props))
	for i := range props {
		resp = append(resp, toPropertyResponse(&props[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /records/{id} (public, rate limited).
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	prop, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPropertyResponse(prop))
}

// Image handles GET /records/{id}/image (public, rate limited). The image
// bytes are relayed as-is with the provider's content type.
func (h *RecordsHandler) Image(w http.ResponseWriter, r *http.Request) {
	img, err := h.svc.Image(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data) //nolint:errcheck
}
