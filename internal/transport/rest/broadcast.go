package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/service/broadcast"
)

// broadcastService defines the minimal interface needed by BroadcastHandler.
type broadcastService interface {
	Send(ctx context.Context, subject, htmlBody string) (*broadcast.Result, error)
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

// BroadcastHandler serves the admin broadcast endpoint and the public
// subscribe/unsubscribe endpoints.
type BroadcastHandler struct {
	svc broadcastService
	log *slog.Logger
}

// NewBroadcastHandler creates a BroadcastHandler.
func NewBroadcastHandler(svc broadcastService, logger *slog.Logger) *BroadcastHandler {
	return &BroadcastHandler{svc: svc, log: logger.With("handler", "broadcast")}
}

type broadcastRequest struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type broadcastResponse struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// Send handles POST /admin/broadcast.
func (h *BroadcastHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Send(r.Context(), req.Subject, req.HTML)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, broadcastResponse{
		Recipients: result.Recipients,
		Sent:       result.Sent,
		Failed:     result.Failed,
	})
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe handles POST /subscribers (public, rate limited).
func (h *BroadcastHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), req.Email)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": sub.Email})
}

// Unsubscribe handles POST /subscribers/unsubscribe (public, rate limited).
// POST rather than DELETE so one-click email footers work.
func (h *BroadcastHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Unsubscribe(r.Context(), req.Email); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
