package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/telhawk-systems/telhawk-notify/internal/httputil"
	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
	"github.com/telhawk-systems/telhawk-notify/internal/models"
	"github.com/telhawk-systems/telhawk-notify/internal/notification"
)

const maxEventBytes = 1 << 20

// Notifier renders and delivers a failure event.
type Notifier interface {
	Notify(ctx context.Context, source string, event *models.FailureEvent) (*models.Response, error)
}

type Handler struct {
	notifier Notifier
}

func NewHandler(notifier Notifier) *Handler {
	return &Handler{notifier: notifier}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Notify handles POST /api/v1/notify
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "", "Method not allowed")
		return
	}

	requestID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, requestID, "Request body too large")
			return
		}
		httputil.WriteError(w, http.StatusBadRequest, requestID, "Failed to read request body")
		return
	}

	event, err := models.DecodeFailureEvent(body)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, requestID, err.Error())
		return
	}

	resp, err := h.notifier.Notify(r.Context(), "http", event)
	if err != nil {
		var de *notification.DeliveryError
		if errors.As(err, &de) {
			httputil.WriteError(w, http.StatusBadGateway, requestID, de.Error())
			return
		}
		if errors.Is(err, notification.ErrMissingWebhookURL) {
			httputil.WriteError(w, http.StatusServiceUnavailable, requestID, notification.ErrMissingWebhookURL.Error())
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, requestID, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
