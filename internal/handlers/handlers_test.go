package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
	"github.com/telhawk-systems/telhawk-notify/internal/models"
	"github.com/telhawk-systems/telhawk-notify/internal/notification"
)

// mockNotifier is a mock implementation of Notifier for testing handlers
type mockNotifier struct {
	notifyFunc func(ctx context.Context, source string, event *models.FailureEvent) (*models.Response, error)
	events     []*models.FailureEvent
}

func (m *mockNotifier) Notify(ctx context.Context, source string, event *models.FailureEvent) (*models.Response, error) {
	m.events = append(m.events, event)
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, source, event)
	}
	return &models.Response{RequestID: middleware.GetRequestID(ctx), Message: models.MessageSent}, nil
}

const validEvent = `{"workflow":"workflow1","exc_id":"exc_id1","categories":["admin"],"message":"Error message","continue_url":"https://continue.com"}`

func newRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/notify", strings.NewReader(body))
	return req.WithContext(middleware.WithRequestID(req.Context(), "req-1"))
}

func TestHealthCheck(t *testing.T) {
	h := NewHandler(&mockNotifier{})
	w := httptest.NewRecorder()

	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestNotify_Success(t *testing.T) {
	notifier := &mockNotifier{}
	h := NewHandler(notifier)
	w := httptest.NewRecorder()

	h.Notify(w, newRequest(http.MethodPost, validEvent))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"req_id":"req-1","message":"Message sent"}`, w.Body.String())

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "workflow1", notifier.events[0].Workflow)
	require.NotNil(t, notifier.events[0].ContinueURL)
	assert.Nil(t, notifier.events[0].AbortURL)
}

func TestNotify_MethodNotAllowed(t *testing.T) {
	h := NewHandler(&mockNotifier{})
	w := httptest.NewRecorder()

	h.Notify(w, newRequest(http.MethodGet, ""))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
}

func TestNotify_MalformedEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "oops"},
		{"missing message", `{"workflow":"w","exc_id":"e","categories":[]}`},
		{"missing categories", `{"workflow":"w","exc_id":"e","message":"m"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &mockNotifier{}
			h := NewHandler(notifier)
			w := httptest.NewRecorder()

			h.Notify(w, newRequest(http.MethodPost, tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, notifier.events, "notifier must not be called with a malformed event")

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "req-1", resp.RequestID)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestNotify_TooLarge(t *testing.T) {
	h := NewHandler(&mockNotifier{})
	w := httptest.NewRecorder()

	big := bytes.Repeat([]byte("a"), maxEventBytes+1)
	h.Notify(w, newRequest(http.MethodPost, string(big)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestNotify_UnreadableBody(t *testing.T) {
	notifier := &mockNotifier{}
	h := NewHandler(notifier)
	w := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notify", iotest.ErrReader(errors.New("connection reset")))
	req = req.WithContext(middleware.WithRequestID(req.Context(), "req-1"))
	h.Notify(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, notifier.events)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
}

func TestNotify_WrappedMissingWebhookURL(t *testing.T) {
	h := NewHandler(&mockNotifier{
		notifyFunc: func(context.Context, string, *models.FailureEvent) (*models.Response, error) {
			return nil, fmt.Errorf("googlechat delivery: %w", notification.ErrMissingWebhookURL)
		},
	})
	w := httptest.NewRecorder()

	h.Notify(w, newRequest(http.MethodPost, validEvent))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"req_id":"req-1","error":"missing webhook URL"}`, w.Body.String())
}

func TestNotify_Failures(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "webhook rejected",
			err:            errors.Join(errors.New("googlechat delivery"), &notification.DeliveryError{StatusCode: 403}),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "Failed to send message. status code:403",
		},
		{
			name:           "missing webhook url",
			err:            notification.ErrMissingWebhookURL,
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "missing webhook URL",
		},
		{
			name:           "unexpected",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&mockNotifier{
				notifyFunc: func(context.Context, string, *models.FailureEvent) (*models.Response, error) {
					return nil, tt.err
				},
			})
			w := httptest.NewRecorder()

			h.Notify(w, newRequest(http.MethodPost, validEvent))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}
