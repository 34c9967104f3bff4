package stream

import (
	"testing"
	"time"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	b := NewBroker()
	events, unsubscribe := b.Subscribe("room_1")
	defer unsubscribe()

	b.Publish(Event{RoomID: "room_1", Type: "messages", Data: "hello"})

	select {
	case ev := <-events:
		if ev.Type != "messages" || ev.Data != "hello" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishIsScopedToRoom(t *testing.T) {
	b := NewBroker()
	events, unsubscribe := b.Subscribe("room_1")
	defer unsubscribe()

	b.Publish(Event{RoomID: "room_2", Type: "messages"})

	select {
	case ev := <-events:
		t.Fatalf("received event for another room: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()
	events, unsubscribe := b.Subscribe("room_1")

	unsubscribe()

	if _, open := <-events; open {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
	if n := b.Subscribers("room_1"); n != 0 {
		t.Fatalf("expected 0 subscribers, got %d", n)
	}

	// Publishing after unsubscribe must not panic or block.
	b.Publish(Event{RoomID: "room_1", Type: "messages"})
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroker()
	_, unsubscribe := b.Subscribe("room_1")
	unsubscribe()
	unsubscribe()
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBroker()
	_, unsubscribe := b.Subscribe("room_1")
	defer unsubscribe()

	// Nobody drains the channel; once its buffer fills, publishes drop
	// instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Event{RoomID: "room_1", Type: "messages", Data: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestSubscribersCount(t *testing.T) {
	b := NewBroker()
	_, u1 := b.Subscribe("room_1")
	_, u2 := b.Subscribe("room_1")
	defer u2()

	if n := b.Subscribers("room_1"); n != 2 {
		t.Fatalf("expected 2 subscribers, got %d", n)
	}
	u1()
	if n := b.Subscribers("room_1"); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
	if n := b.Subscribers("room_2"); n != 0 {
		t.Fatalf("expected 0 subscribers for empty room, got %d", n)
	}
}
