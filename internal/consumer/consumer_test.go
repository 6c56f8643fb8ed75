package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-notify/internal/logging"
	"github.com/telhawk-systems/telhawk-notify/internal/messaging"
	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
	"github.com/telhawk-systems/telhawk-notify/internal/models"
)

// fakeClient is an in-memory messaging.Client
type fakeClient struct {
	handlers  map[string]messaging.MessageHandler
	queues    map[string]string
	published []*messaging.Message
	subErr    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		handlers: make(map[string]messaging.MessageHandler),
		queues:   make(map[string]string),
	}
}

func (f *fakeClient) PublishMsg(_ context.Context, msg *messaging.Message) error {
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeClient) QueueSubscribe(subject, queue string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.handlers[subject] = handler
	f.queues[subject] = queue
	return &fakeSubscription{subject: subject, valid: true}, nil
}

func (f *fakeClient) Drain() error      { return nil }
func (f *fakeClient) IsConnected() bool { return true }
func (f *fakeClient) Close() error      { return nil }

// deliver simulates an inbound message on subject.
func (f *fakeClient) deliver(t *testing.T, subject string, msg *messaging.Message) error {
	t.Helper()
	handler, ok := f.handlers[subject]
	require.True(t, ok, "no subscription for %s", subject)
	msg.Subject = subject
	return handler(context.Background(), msg)
}

type fakeSubscription struct {
	subject string
	valid   bool
}

func (s *fakeSubscription) Unsubscribe() error { s.valid = false; return nil }
func (s *fakeSubscription) Subject() string    { return s.subject }
func (s *fakeSubscription) IsValid() bool      { return s.valid }

type mockNotifier struct {
	err      error
	events   []*models.FailureEvent
	requests []string
}

func (m *mockNotifier) Notify(ctx context.Context, source string, event *models.FailureEvent) (*models.Response, error) {
	m.events = append(m.events, event)
	m.requests = append(m.requests, middleware.GetRequestID(ctx))
	if m.err != nil {
		return nil, m.err
	}
	return &models.Response{RequestID: middleware.GetRequestID(ctx), Message: models.MessageSent}, nil
}

const validEvent = `{"workflow":"workflow1","exc_id":"exc_id1","categories":["admin"],"message":"Error message"}`

func TestConsumer_StartDefaults(t *testing.T) {
	client := newFakeClient()
	c := New(client, &mockNotifier{}, "", "", logging.Discard())

	require.NoError(t, c.Start())
	assert.Contains(t, client.handlers, messaging.SubjectWorkflowFailuresNotify)
	assert.Equal(t, messaging.QueueNotifyWorkers, client.queues[messaging.SubjectWorkflowFailuresNotify])

	require.NoError(t, c.Stop())
	assert.False(t, c.sub.IsValid())
}

func TestConsumer_StartError(t *testing.T) {
	client := newFakeClient()
	client.subErr = errors.New("not connected")

	c := New(client, &mockNotifier{}, "ops.failures", "q", logging.Discard())
	assert.Error(t, c.Start())
	assert.NoError(t, c.Stop())
}

func TestConsumer_HandleWithReply(t *testing.T) {
	client := newFakeClient()
	notifier := &mockNotifier{}
	c := New(client, notifier, "ops.failures", "q", logging.Discard())
	require.NoError(t, c.Start())

	err := client.deliver(t, "ops.failures", &messaging.Message{
		Data:     []byte(validEvent),
		Reply:    "_INBOX.1",
		Metadata: map[string]string{"X-Request-ID": "req-nats-1"},
	})
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "workflow1", notifier.events[0].Workflow)
	assert.Equal(t, []string{"req-nats-1"}, notifier.requests)

	require.Len(t, client.published, 1)
	reply := client.published[0]
	assert.Equal(t, "_INBOX.1", reply.Subject)
	assert.Equal(t, "req-nats-1", reply.Metadata["X-Request-ID"])
	assert.JSONEq(t, `{"req_id":"req-nats-1","message":"Message sent"}`, string(reply.Data))
}

func TestConsumer_HandleWithoutReply(t *testing.T) {
	client := newFakeClient()
	notifier := &mockNotifier{}
	c := New(client, notifier, "", "", logging.Discard())
	require.NoError(t, c.Start())

	err := client.deliver(t, messaging.SubjectWorkflowFailuresNotify, &messaging.Message{Data: []byte(validEvent)})
	require.NoError(t, err)

	assert.Len(t, notifier.events, 1)
	assert.NotEmpty(t, notifier.requests[0], "a request ID is generated when none is supplied")
	assert.Empty(t, client.published)
}

func TestConsumer_MalformedEvent(t *testing.T) {
	client := newFakeClient()
	notifier := &mockNotifier{}
	c := New(client, notifier, "", "", logging.Discard())
	require.NoError(t, c.Start())

	err := client.deliver(t, messaging.SubjectWorkflowFailuresNotify, &messaging.Message{
		Data:  []byte(`{"workflow":"w"}`),
		Reply: "_INBOX.2",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMissingField)
	assert.Empty(t, notifier.events)

	require.Len(t, client.published, 1)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(client.published[0].Data, &resp))
	assert.Contains(t, resp.Error, "exc_id")
}

func TestConsumer_DeliveryFailure(t *testing.T) {
	client := newFakeClient()
	notifier := &mockNotifier{err: errors.New("Failed to send message. status code:500")}
	c := New(client, notifier, "", "", logging.Discard())
	require.NoError(t, c.Start())

	err := client.deliver(t, messaging.SubjectWorkflowFailuresNotify, &messaging.Message{
		Data:  []byte(validEvent),
		Reply: "_INBOX.3",
	})
	require.Error(t, err)

	require.Len(t, client.published, 1)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(client.published[0].Data, &resp))
	assert.Equal(t, "Failed to send message. status code:500", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}
