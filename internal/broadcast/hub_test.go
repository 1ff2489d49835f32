package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rekk2/event-registration/internal/domain"
)

func TestHub_PublishReachesEverySubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := hub.Subscribe(4)
	b := hub.Subscribe(4)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, 2, hub.Subscribers())

	ev := Event{Topic: TopicStatsUpdate, Payload: StatsUpdate{TotalCount: 1}}
	require.NoError(t, hub.Publish(context.Background(), ev))

	assert.Equal(t, ev, <-a.C)
	assert.Equal(t, ev, <-b.C)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := hub.Subscribe(1)
	fast := hub.Subscribe(8)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			_ = hub.Publish(context.Background(), Event{Topic: TopicStatsUpdate, Payload: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Len(t, slow.C, 1)
	assert.Len(t, fast.C, 5)
	assert.Equal(t, 0, (<-slow.C).Payload)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe(1)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())
	assert.NoError(t, hub.Publish(context.Background(), Event{Topic: TopicStatsUpdate}))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe(1)
	hub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Nil(t, hub.Subscribe(1))
	assert.Equal(t, 0, hub.Subscribers())
}

func TestRegistrationEvents_Order(t *testing.T) {
	entry := domain.NameEntry{ID: "1", Door: "A", Name: "Ann Lee"}
	agg := domain.Aggregate{DoorCounts: map[string]int{"A": 1}, TotalCount: 1}

	evs := RegistrationEvents(entry, agg)
	require.Len(t, evs, 2)
	assert.Equal(t, TopicStatsUpdate, evs[0].Topic)
	assert.Equal(t, TopicNewNameRegistered, evs[1].Topic)

	payload, ok := evs[1].Payload.(NewNameRegistered)
	require.True(t, ok)
	assert.Equal(t, "Ann Lee", payload.Entry.Name)
	assert.Equal(t, 1, payload.TotalCount)
}
