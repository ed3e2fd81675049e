package progress

import (
	"Backend-Evalhub/src/models"
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// subscriberBuffer is the channel depth per subscriber. A subscriber that
// falls further behind loses events; delivery is at-most-once by contract.
const subscriberBuffer = 8

// Subscription is a handle to a project's progress stream. Receive from C
// until Unsubscribe closes it.
type Subscription struct {
	ID        string
	ProjectID primitive.ObjectID
	C         chan models.ProjectProgress
}

// Broadcaster fans progress snapshots out to in-process subscribers
// (dashboard streams) and mirrors each publish onto a Redis channel for the
// external push layer. Best-effort on both paths: a slow subscriber misses
// events, a Redis outage is logged and ignored. Callers needing durability
// poll the stored ProjectProgress instead.
type Broadcaster struct {
	mu    sync.RWMutex
	subs  map[string]map[string]*Subscription // projectId hex -> handle -> sub
	redis *redis.Client
}

func NewBroadcaster(redisClient *redis.Client) *Broadcaster {
	return &Broadcaster{
		subs:  make(map[string]map[string]*Subscription),
		redis: redisClient,
	}
}

// ChannelFor returns the Redis channel name the external socket layer
// listens on for a project room.
func ChannelFor(projectID primitive.ObjectID) string {
	return "evalhub:progress:" + projectID.Hex()
}

// Subscribe registers a new subscriber for the project. The subscription is
// connection-scoped; the caller must Unsubscribe when the connection drops.
func (b *Broadcaster) Subscribe(projectID primitive.ObjectID) *Subscription {
	sub := &Subscription{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		C:         make(chan models.ProjectProgress, subscriberBuffer),
	}

	key := projectID.Hex()
	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[string]*Subscription)
	}
	b.subs[key][sub.ID] = sub
	b.mu.Unlock()

	return sub
}

// Unsubscribe removes the subscription and closes its channel. Idempotent.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	key := sub.ProjectID.Hex()
	b.mu.Lock()
	defer b.mu.Unlock()

	if group, ok := b.subs[key]; ok {
		if _, registered := group[sub.ID]; registered {
			delete(group, sub.ID)
			close(sub.C)
		}
		if len(group) == 0 {
			delete(b.subs, key)
		}
	}
}

// SubscriberCount reports how many subscribers a project currently has.
func (b *Broadcaster) SubscriberCount(projectID primitive.ObjectID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[projectID.Hex()])
}

// Publish fans the snapshot out to every registered subscriber without
// blocking: a full buffer means the event is dropped for that subscriber.
// Publishers are never held up by slow or dead consumers.
func (b *Broadcaster) Publish(projectID primitive.ObjectID, snapshot models.ProjectProgress) {
	key := projectID.Hex()

	b.mu.RLock()
	for _, sub := range b.subs[key] {
		select {
		case sub.C <- snapshot:
		default:
			// subscriber buffer full, at-most-once delivery drops it
		}
	}
	b.mu.RUnlock()

	b.publishRedis(projectID, snapshot)
}

func (b *Broadcaster) publishRedis(projectID primitive.ObjectID, snapshot models.ProjectProgress) {
	if b.redis == nil {
		return
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Println("⚠️ Failed to marshal progress snapshot:", err)
		return
	}
	if err := b.redis.Publish(context.Background(), ChannelFor(projectID), payload).Err(); err != nil {
		log.Println("⚠️ Failed to publish progress to Redis:", err)
	}
}
