package ws

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/indicae/backend/internal/types"
)

const userChannelPrefix = "user:"

// UserChannel returns the Redis pub/sub channel carrying one user's
// live-update events.
func UserChannel(userID uuid.UUID) string {
	return userChannelPrefix + userID.String()
}

// Hub holds websocket connections and subscribes to Redis channels so events
// published on any instance reach the clients connected to this one.
type Hub struct {
	rdb *redis.Client

	clients    map[string]map[*Client]bool // userID -> set of clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan *envelope

	done chan struct{}
}

type envelope struct {
	targetUser string
	payload    []byte
}

func NewHub(rdb *redis.Client) *Hub {
	h := &Hub{
		rdb:        rdb,
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *envelope, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	// Pattern-subscribe to every user channel; the hub filters locally to the
	// users actually connected here.
	pubsub := h.rdb.PSubscribe(context.Background(), userChannelPrefix+"*")
	ch := pubsub.Channel()
	go func() {
		for msg := range ch {
			userID := strings.TrimPrefix(msg.Channel, userChannelPrefix)
			h.broadcast <- &envelope{targetUser: userID, payload: []byte(msg.Payload)}
		}
	}()

	for {
		select {
		case <-h.done:
			_ = pubsub.Close()
			return
		case c := <-h.register:
			if _, ok := h.clients[c.userID]; !ok {
				h.clients[c.userID] = make(map[*Client]bool)
			}
			h.clients[c.userID][c] = true
			logrus.WithField("user_id", c.userID).Debug("ws client registered")
		case c := <-h.unregister:
			if conns, ok := h.clients[c.userID]; ok {
				if _, exists := conns[c]; exists {
					delete(conns, c)
					close(c.send)
				}
				if len(conns) == 0 {
					delete(h.clients, c.userID)
				}
			}
		case m := <-h.broadcast:
			conns, ok := h.clients[m.targetUser]
			if !ok {
				continue
			}
			for c := range conns {
				select {
				case c.send <- m.payload:
				default:
					// Slow consumer; drop the connection rather than buffer
					// unboundedly. The client recovers by a full refresh on
					// reconnect.
					close(c.send)
					delete(conns, c)
				}
			}
		}
	}
}

// Close stops the hub loop and its Redis subscription.
func (h *Hub) Close() {
	close(h.done)
}

func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// PublishToUser publishes an event to the user's Redis channel so every hub
// instance can deliver it to that user's open sockets. Implements
// service.EventPublisher.
func (h *Hub) PublishToUser(ctx context.Context, userID uuid.UUID, event types.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}
