package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mechmarket-server/storage"
)

// Emitter fans already-computed events out to the realtime layer. Rooms are
// Redis pub/sub channels keyed by conversation or user id; the socket
// gateway subscribes and forwards to connected clients. The emitter carries
// no business logic and its failures are the caller's to ignore.
type Emitter struct{}

func NewEmitter() *Emitter {
	return &Emitter{}
}

type realtimeEvent struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sentAt"`
}

var emitContext = context.Background()

func (e *Emitter) publish(channel, event string, payload interface{}) error {
	if storage.Redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	encoded, err := json.Marshal(realtimeEvent{Event: event, Payload: payload, SentAt: time.Now()})
	if err != nil {
		return err
	}
	return storage.Redis.Publish(emitContext, channel, encoded).Err()
}

// PublishToConversation emits to everyone subscribed to a conversation room.
func (e *Emitter) PublishToConversation(conversationID uint, event string, payload interface{}) error {
	return e.publish(fmt.Sprintf("conversation:%d", conversationID), event, payload)
}

// PublishToUser emits to a single user's private room.
func (e *Emitter) PublishToUser(userID uint, event string, payload interface{}) error {
	return e.publish(fmt.Sprintf("user:%d", userID), event, payload)
}

// Presence: online users live in a Redis set with a per-user TTL key so a
// dead connection eventually drops offline. Changes are broadcast globally.

func (e *Emitter) SetOnline(userID uint) {
	if storage.Redis == nil {
		return
	}
	key := fmt.Sprintf("presence:%d", userID)
	storage.Redis.Set(emitContext, key, "online", 90*time.Second)
	e.publish("presence", "online", map[string]uint{"userID": userID})
}

func (e *Emitter) SetOffline(userID uint) {
	if storage.Redis == nil {
		return
	}
	storage.Redis.Del(emitContext, fmt.Sprintf("presence:%d", userID))
	e.publish("presence", "offline", map[string]uint{"userID": userID})
}

func (e *Emitter) IsOnline(userID uint) bool {
	if storage.Redis == nil {
		return false
	}
	val, err := storage.Redis.Get(emitContext, fmt.Sprintf("presence:%d", userID)).Result()
	return err == nil && val == "online"
}
