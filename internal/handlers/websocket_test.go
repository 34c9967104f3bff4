package handlers

import (
	"errors"
	"testing"
	"time"

	"FounderHub/server/internal/stream"
)

func TestForwardRoomEventsDeliversEnvelope(t *testing.T) {
	b := stream.NewBroker()
	events, unsubscribe := b.Subscribe("startup_4")

	got := make(chan map[string]interface{}, 1)
	go forwardRoomEvents(events, unsubscribe, 1, func(v interface{}) error {
		got <- v.(map[string]interface{})
		return nil
	})

	b.Publish(stream.Event{RoomID: "startup_4", Type: "messages", Data: "hello"})

	select {
	case envelope := <-got:
		if envelope["event"] != "messages" || envelope["room_id"] != "startup_4" || envelope["data"] != "hello" {
			t.Fatalf("unexpected envelope: %+v", envelope)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded event")
	}

	unsubscribe()
}

func TestForwardRoomEventsUnsubscribesOnWriteFailure(t *testing.T) {
	b := stream.NewBroker()
	events, unsubscribe := b.Subscribe("startup_4")

	done := make(chan struct{})
	go func() {
		forwardRoomEvents(events, unsubscribe, 1, func(interface{}) error {
			return errors.New("broken pipe")
		})
		close(done)
	}()

	b.Publish(stream.Event{RoomID: "startup_4", Type: "messages"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the forwarder to stop")
	}

	if n := b.Subscribers("startup_4"); n != 0 {
		t.Fatalf("expected the dead connection's subscription to be torn down, got %d subscribers", n)
	}
}
