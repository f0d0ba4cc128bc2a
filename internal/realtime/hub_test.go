package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBus struct {
	mu         sync.Mutex
	published  []string
	handlers   map[uuid.UUID]func(event string, payload []byte)
	subscribed int
	canceled   int
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[uuid.UUID]func(string, []byte))}
}

func (f *fakeBus) PublishFeedEvent(eventID uuid.UUID, event string, payload []byte) error {
	f.mu.Lock()
	f.published = append(f.published, event)
	h := f.handlers[eventID]
	f.mu.Unlock()
	// Loop the message back like Redis would.
	if h != nil {
		h(event, payload)
	}
	return nil
}

func (f *fakeBus) SubscribeFeed(eventID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed++
	f.handlers[eventID] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.canceled++
		delete(f.handlers, eventID)
	}, nil
}

func newTestClient(h *Hub, eventID uuid.UUID) *Client {
	return &Client{
		ID:      uuid.New().String(),
		EventID: eventID,
		hub:     h,
		send:    make(chan WSMessage, 8),
		logger:  zap.NewNop(),
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	bus := newFakeBus()
	h := NewHub(zap.NewNop(), bus, bus)
	eventID := uuid.New()

	c1 := newTestClient(h, eventID)
	c2 := newTestClient(h, eventID)

	h.Register(c1)
	require.Equal(t, 1, bus.subscribed, "first client starts the subscription")

	h.Register(c2)
	require.Equal(t, 1, bus.subscribed, "second client reuses it")
	require.Equal(t, 2, h.SubscriberCount(eventID))

	h.Unregister(c1)
	require.Equal(t, 0, bus.canceled, "subscription outlives the first leaver")

	h.Unregister(c2)
	require.Equal(t, 1, bus.canceled, "last client cancels the subscription")
	require.Equal(t, 0, h.SubscriberCount(eventID))
}

func TestPublishReachesLocalClientsViaBus(t *testing.T) {
	bus := newFakeBus()
	h := NewHub(zap.NewNop(), bus, bus)
	eventID := uuid.New()

	c := newTestClient(h, eventID)
	h.Register(c)

	h.Publish(eventID, "announcement_created", map[string]string{"title": "hello"})

	// Exactly one copy: the published message loops back through the bus.
	require.Equal(t, []string{"announcement_created"}, bus.published)
	select {
	case msg := <-c.send:
		require.Equal(t, "announcement_created", msg.Event)
		var data map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		require.Equal(t, "hello", data["title"])
	default:
		t.Fatal("no message delivered to client")
	}
	select {
	case <-c.send:
		t.Fatal("message delivered twice")
	default:
	}
}

func TestPublishFallsBackToLocalWithoutBus(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	eventID := uuid.New()

	c := newTestClient(h, eventID)
	h.Register(c)

	h.Publish(eventID, "announcement_created", map[string]string{"title": "hello"})

	select {
	case msg := <-c.send:
		require.Equal(t, "announcement_created", msg.Event)
	default:
		t.Fatal("no message delivered to client")
	}
}

// Broadcast runs on the pub/sub goroutine while connection goroutines register
// and unregister; the client set must stay safe under that interleaving.
func TestBroadcastDuringChurnIsSafe(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	eventID := uuid.New()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			c := newTestClient(h, eventID)
			h.Register(c)
			if i%2 == 0 {
				h.Unregister(c)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			h.Broadcast(eventID, "announcement_created", map[string]string{"title": "hello"})
		}
	}()

	wg.Wait()
	require.Equal(t, 1000, h.SubscriberCount(eventID))
}

func TestBroadcastIsScopedToEvent(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	eventA, eventB := uuid.New(), uuid.New()

	ca := newTestClient(h, eventA)
	cb := newTestClient(h, eventB)
	h.Register(ca)
	h.Register(cb)

	h.Broadcast(eventA, "announcement_created", map[string]string{"title": "for A"})

	select {
	case <-ca.send:
	default:
		t.Fatal("event A client missed the broadcast")
	}
	select {
	case <-cb.send:
		t.Fatal("event B client received event A's broadcast")
	default:
	}
}
