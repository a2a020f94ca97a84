package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

// drain collects whatever is buffered after a short settle.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("", 0)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("", 0)
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "deck.created", Data: map[string]string{"id": "q3"}})

	s := recv(t, ch)
	if !strings.HasPrefix(s, "id: 1\nevent: deck.created\n") {
		t.Errorf("unexpected framing %q", s)
	}
	if !strings.Contains(s, `data: {"id":"q3"}`) {
		t.Errorf("missing data in %q", s)
	}
}

func TestPublishDeckEvent_ListThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("", 0)
	defer b.Unsubscribe(ch)

	// First event should trigger decks.updated.
	b.PublishDeckEvent(KindCreated, "a")
	// Second event immediately should NOT trigger another decks.updated.
	b.PublishDeckEvent(KindApproved, "b")
	// Unknown kinds are dropped entirely.
	b.PublishDeckEvent("renamed", "c")

	listCount, deckCount := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, ListEvent) {
			listCount++
		} else {
			deckCount++
		}
	}

	if deckCount != 2 {
		t.Errorf("deck events = %d, want 2", deckCount)
	}
	if listCount != 1 {
		t.Errorf("list events = %d, want 1 (throttled)", listCount)
	}
}

func TestSubscribe_DeckFilter(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe("a", 0)
	defer b.Unsubscribe(ch)

	b.PublishDeckEvent(KindUpdated, "b")
	b.PublishDeckEvent(KindUpdated, "a")

	got := drain(ch)
	if len(got) != 1 || !strings.Contains(got[0], `"id":"a"`) {
		t.Errorf("filtered events = %q", got)
	}
}

func TestSubscribe_ReplaysSinceLastEventID(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	// Ids: 1 deck.created a, 2 decks.updated, 3 deck.updated a, 4 deck.deleted b.
	b.PublishDeckEvent(KindCreated, "a")
	b.PublishDeckEvent(KindUpdated, "a")
	b.PublishDeckEvent(KindDeleted, "b")
	// Let the loop handle the publishes before subscribing.
	time.Sleep(50 * time.Millisecond)

	ch := b.Subscribe("", 2)
	defer b.Unsubscribe(ch)

	got := drain(ch)
	if len(got) != 2 || !strings.HasPrefix(got[0], "id: 3\n") || !strings.HasPrefix(got[1], "id: 4\n") {
		t.Errorf("replayed = %q", got)
	}

	fresh := b.Subscribe("", 0)
	defer b.Unsubscribe(fresh)
	if got := drain(fresh); len(got) != 0 {
		t.Errorf("since=0 should not replay: %q", got)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100*time.Millisecond, WithHeartbeat(20*time.Millisecond))
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events?deck=x", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishDeckEvent(KindUpdated, "x")
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: deck.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if strings.Contains(body, ListEvent) {
		t.Errorf("deck-scoped stream should not carry list events: %q", body)
	}
	if !strings.Contains(body, ": ping") {
		t.Errorf("handler output missing heartbeat: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("", 0)
	defer b.Unsubscribe(ch)

	// Fill the client buffer and then some; Publish must not block.
	for i := 0; i < clientBuffer+10; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("", 0)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "deck.updated", Data: map[string]string{"id": "x"}})
	b.PublishDeckEvent(KindUpdated, "x")
}
