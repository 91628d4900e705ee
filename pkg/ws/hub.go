// Package ws provides a room-based WebSocket hub on gorilla/websocket.
//
// A Hub owns every client and every room membership from a single
// goroutine (Run). Clients are either websocket connections (Upgrade) or
// in-process subscribers (Subscribe), which the SSE endpoint and tests use.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//
//	hub.Publish("order:42", frame) // members of one room
//	hub.Broadcast(frame)          // every connected client
package ws

import (
	"context"
	"sync/atomic"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/metrics"
)

const defaultBuffer = 256

// Message is a frame received from a websocket client.
type Message struct {
	Client *Client
	Data   []byte
}

type opKind int

const (
	opJoin opKind = iota
	opLeave
	opPublish
)

// op is a membership change or a publish. Both travel on one channel so
// a Join followed by a Publish from the same goroutine is applied in order.
type op struct {
	kind   opKind
	client *Client
	room   string // empty publish means every client
	data   []byte
}

// Hub routes published frames to room members.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	ops        chan op
	inbound    chan Message
	done       chan struct{}

	// owned by Run
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	count atomic.Int64

	// OnMessage handles inbound frames. It runs outside the hub loop, so it
	// may call Join and Leave.
	OnMessage func(h *Hub, msg Message)
}

// NewHub returns a hub; start it with Run.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ops:        make(chan op, defaultBuffer),
		inbound:    make(chan Message, defaultBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

// Run processes hub traffic until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	go h.dispatch(ctx)
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			for _, room := range c.initial {
				h.join(c, room)
			}
			c.initial = nil
			h.setCount()
			logger.Debug("ws: client connected", "client", c.id, "total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				logger.Debug("ws: client disconnected", "client", c.id, "total", len(h.clients))
			}

		case o := <-h.ops:
			h.apply(o)
		}
	}
}

func (h *Hub) apply(o op) {
	switch o.kind {
	case opJoin, opLeave:
		if _, ok := h.clients[o.client]; !ok {
			return
		}
		if o.kind == opJoin {
			h.join(o.client, o.room)
		} else {
			h.leave(o.client, o.room)
		}
	case opPublish:
		if o.room == "" {
			for c := range h.clients {
				h.deliver(c, o.data)
			}
			return
		}
		for c := range h.rooms[o.room] {
			h.deliver(c, o.data)
		}
	}
}

func (h *Hub) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.inbound:
			if h.OnMessage != nil {
				h.OnMessage(h, msg)
			}
		}
	}
}

// deliver queues data for c, dropping c if its buffer is full.
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		logger.Warn("ws: dropping slow client", "client", c.id)
		h.drop(c)
	}
}

func (h *Hub) join(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) leave(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (h *Hub) drop(c *Client) {
	for room := range c.rooms {
		h.leave(c, room)
	}
	delete(h.clients, c)
	h.setCount()
	close(c.send)
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.RealtimeClients.Set(float64(len(h.clients)))
}

// Publish sends data to every member of room. It returns false when the
// hub has stopped.
func (h *Hub) Publish(room string, data []byte) bool {
	if room == "" {
		return false
	}
	return h.enqueue(op{kind: opPublish, room: room, data: data})
}

// Broadcast sends data to every connected client.
func (h *Hub) Broadcast(data []byte) bool {
	return h.enqueue(op{kind: opPublish, data: data})
}

func (h *Hub) enqueue(o op) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.ops <- o:
		return true
	case <-h.done:
		return false
	}
}

// Join adds c to room.
func (h *Hub) Join(c *Client, room string) {
	h.enqueue(op{kind: opJoin, client: c, room: room})
}

// Leave removes c from room.
func (h *Hub) Leave(c *Client, room string) {
	h.enqueue(op{kind: opLeave, client: c, room: room})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Subscribe registers an in-process client already joined to rooms. Frames
// arrive on the returned client's C channel until Close or hub shutdown.
func (h *Hub) Subscribe(buffer int, rooms ...string) *Client {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	c := newClient(h, nil, buffer, rooms)
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
	return c
}
