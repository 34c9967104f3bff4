package stream

import (
	"log"
	"sync"
)

// Event is one push delivered to room subscribers. Message events carry the
// full ordered message list of the room, not a delta; the consumer diffs.
type Event struct {
	RoomID string      `json:"room_id"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

type subscriber struct {
	id int
	ch chan Event
}

// Broker fans room events out to subscribers. Subscribe returns a receive
// channel plus an unsubscribe func; after unsubscribe no further events are
// delivered and the channel is closed.
type Broker struct {
	mu     sync.Mutex
	rooms  map[string][]subscriber
	nextID int
}

var GlobalBroker = NewBroker()

func NewBroker() *Broker {
	return &Broker{
		rooms: make(map[string][]subscriber),
	}
}

func (b *Broker) Subscribe(roomID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscriber{id: b.nextID, ch: make(chan Event, 16)}
	b.rooms[roomID] = append(b.rooms[roomID], sub)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.remove(roomID, sub.id)
		})
	}
	return sub.ch, unsubscribe
}

func (b *Broker) remove(roomID string, subID int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.rooms[roomID]
	for i, s := range subs {
		if s.id == subID {
			b.rooms[roomID] = append(subs[:i], subs[i+1:]...)
			close(s.ch)
			break
		}
	}
	if len(b.rooms[roomID]) == 0 {
		delete(b.rooms, roomID)
	}
}

// Publish delivers the event to every subscriber of the room. Delivery is
// non-blocking; a subscriber that cannot keep up loses the event and catches
// up on the next full-list push.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.rooms[ev.RoomID] {
		select {
		case s.ch <- ev:
		default:
			log.Printf("Dropping %s event for slow subscriber %d in room %s", ev.Type, s.id, ev.RoomID)
		}
	}
}

// Subscribers returns the current listener count of a room.
func (b *Broker) Subscribers(roomID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rooms[roomID])
}
