package progress

import (
	"testing"

	"Backend-Evalhub/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func snapshot(projectID primitive.ObjectID, pct float64) models.ProjectProgress {
	return models.ProjectProgress{ProjectID: projectID, Percentage: pct}
}

func TestSubscribeReceivesPublish(t *testing.T) {
	b := NewBroadcaster(nil)
	projectID := primitive.NewObjectID()

	sub := b.Subscribe(projectID)
	defer b.Unsubscribe(sub)

	b.Publish(projectID, snapshot(projectID, 30.0))

	got := <-sub.C
	assert.Equal(t, 30.0, got.Percentage)
	assert.Equal(t, projectID, got.ProjectID)
}

func TestPublishOnlyReachesOwnProject(t *testing.T) {
	b := NewBroadcaster(nil)
	projectA := primitive.NewObjectID()
	projectB := primitive.NewObjectID()

	subA := b.Subscribe(projectA)
	subB := b.Subscribe(projectB)
	defer b.Unsubscribe(subA)
	defer b.Unsubscribe(subB)

	b.Publish(projectA, snapshot(projectA, 50.0))

	assert.Len(t, subA.C, 1)
	assert.Len(t, subB.C, 0)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster(nil)
	projectID := primitive.NewObjectID()

	sub := b.Subscribe(projectID)
	b.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount(projectID))

	// Idempotent: a second unsubscribe must not panic on the closed
	// channel.
	b.Unsubscribe(sub)
	b.Unsubscribe(nil)
}

func TestPublishAfterUnsubscribeIsDropped(t *testing.T) {
	b := NewBroadcaster(nil)
	projectID := primitive.NewObjectID()

	sub := b.Subscribe(projectID)
	b.Unsubscribe(sub)

	// No subscribers left; publish must be a no-op.
	b.Publish(projectID, snapshot(projectID, 10.0))
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	b := NewBroadcaster(nil)
	projectID := primitive.NewObjectID()

	sub := b.Subscribe(projectID)
	defer b.Unsubscribe(sub)

	// Nobody drains the channel: overflow events are dropped, the
	// publisher never blocks. At-most-once delivery.
	for i := 0; i < subscriberBuffer*3; i++ {
		b.Publish(projectID, snapshot(projectID, float64(i)))
	}

	assert.Len(t, sub.C, subscriberBuffer)

	// The buffered events are the oldest ones, in order.
	first := <-sub.C
	assert.Equal(t, 0.0, first.Percentage)
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	b := NewBroadcaster(nil)
	projectID := primitive.NewObjectID()

	subs := make([]*Subscription, 5)
	for i := range subs {
		subs[i] = b.Subscribe(projectID)
	}
	require.Equal(t, 5, b.SubscriberCount(projectID))

	b.Publish(projectID, snapshot(projectID, 80.0))

	for _, sub := range subs {
		got := <-sub.C
		assert.Equal(t, 80.0, got.Percentage)
		b.Unsubscribe(sub)
	}
	assert.Equal(t, 0, b.SubscriberCount(projectID))
}

func TestChannelFor(t *testing.T) {
	projectID := primitive.NewObjectID()
	assert.Equal(t, "evalhub:progress:"+projectID.Hex(), ChannelFor(projectID))
}
