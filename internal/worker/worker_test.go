package worker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luna-live/backend/internal/push"
	"github.com/luna-live/backend/internal/worker"
	"github.com/luna-live/backend/pkg/queue"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

func job(t *testing.T, typ queue.JobType, payload interface{}) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: typ, Payload: raw, CreatedAt: time.Now()}
}

func TestProcessInviteEmail(t *testing.T) {
	mailer := &fakeMailer{}
	p := worker.NewProcessor(nil, nil, mailer, zap.NewNop())

	payload := queue.InviteEmailPayload{
		InvitationID:   uuid.New(),
		EventID:        uuid.New(),
		EventTitle:     "Product Launch",
		RecipientEmail: "bob@acme.io",
		InviteURL:      "https://luna.live/join/invite/tok123",
	}
	err := p.Process(context.Background(), job(t, queue.JobTypeInviteEmail, payload))
	require.NoError(t, err)
	require.Equal(t, "bob@acme.io", mailer.to)
	require.Contains(t, mailer.subject, "Product Launch")
	require.Contains(t, mailer.body, payload.InviteURL)
}

func TestProcessUnknownJobType(t *testing.T) {
	p := worker.NewProcessor(nil, nil, &fakeMailer{}, zap.NewNop())
	err := p.Process(context.Background(), job(t, queue.JobType("mystery"), struct{}{}))
	require.Error(t, err)
}

func TestProcessPushDelivery(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	deliverer := push.NewDeliverer(nil, "", time.Second, zap.NewNop())
	p := worker.NewProcessor(nil, deliverer, &fakeMailer{}, zap.NewNop())

	payload := queue.PushDeliveryPayload{
		SubscriptionID: uuid.New(),
		EventID:        uuid.New(),
		Endpoint:       srv.URL,
		Title:          "Product Launch",
		Body:           "Doors open at 9",
	}
	err := p.Process(context.Background(), job(t, queue.JobTypePushDelivery, payload))
	require.NoError(t, err)
	require.Equal(t, "Product Launch", received["title"])
	require.Equal(t, "Doors open at 9", received["body"])
}

func TestProcessPushDeliveryRetryableFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	deliverer := push.NewDeliverer(nil, "", time.Second, zap.NewNop())
	p := worker.NewProcessor(nil, deliverer, &fakeMailer{}, zap.NewNop())

	payload := queue.PushDeliveryPayload{SubscriptionID: uuid.New(), EventID: uuid.New(), Endpoint: srv.URL}
	err := p.Process(context.Background(), job(t, queue.JobTypePushDelivery, payload))
	require.Error(t, err)
}

func TestDelivererPrefersProviderURL(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	deliverer := push.NewDeliverer(nil, srv.URL, time.Second, zap.NewNop())
	err := deliverer.Deliver(context.Background(), queue.PushDeliveryPayload{
		SubscriptionID: uuid.New(),
		EventID:        uuid.New(),
		Endpoint:       "http://127.0.0.1:1/unreachable",
	})
	require.NoError(t, err)
	require.True(t, hit)
}
