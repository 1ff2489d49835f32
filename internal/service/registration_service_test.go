package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rekk2/event-registration/internal/broadcast"
	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistrationService(t *testing.T, pub broadcast.Publisher, opts RegistrationOptions) (RegistrationService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	seedDoors(t, store, "A", "B")
	svc := NewRegistrationService(store, store, pub, opts, zap.NewNop())
	svc.(*registrationService).now = newFakeClock().Now
	return svc, store
}

func TestRegister_BroadcastsStatsThenNewName(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestRegistrationService(t, pub, RegistrationOptions{RequireKnownDoor: true})
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "Ann Lee")
	require.NoError(t, err)
	res, err := svc.Register(ctx, " B ", " Bob Ray ")
	require.NoError(t, err)

	assert.Equal(t, "Name Bob Ray registered at door B", res.Message)
	assert.Equal(t, "B", res.Entry.Door)
	assert.NotEmpty(t, res.Entry.ID)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, res.DoorCounts)
	assert.Equal(t, 2, res.TotalCount)

	assert.Equal(t, []string{
		broadcast.TopicStatsUpdate, broadcast.TopicNewNameRegistered,
		broadcast.TopicStatsUpdate, broadcast.TopicNewNameRegistered,
	}, pub.topics())

	stats, ok := pub.events[2].Payload.(broadcast.StatsUpdate)
	require.True(t, ok)
	assert.Equal(t, 2, stats.TotalCount)
}

func TestRegister_Validation(t *testing.T) {
	pub := &recordingPublisher{}
	svc, store := newTestRegistrationService(t, pub, RegistrationOptions{RequireKnownDoor: true})
	ctx := context.Background()

	for _, tc := range [][2]string{{"", "Ann"}, {"A", "   "}, {"  ", ""}} {
		_, err := svc.Register(ctx, tc[0], tc[1])
		assert.True(t, domain.IsValidation(err), "door=%q name=%q", tc[0], tc[1])
	}

	_, err := svc.Register(ctx, "Z", "Ann Lee")
	assert.True(t, domain.IsValidation(err))

	agg, err := store.CountByDoor(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.TotalCount)
	assert.Empty(t, pub.topics())
}

func TestRegister_UnknownDoorAllowedWhenCheckDisabled(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, RegistrationOptions{})
	res, err := svc.Register(context.Background(), "Side Gate", "Ann Lee")
	require.NoError(t, err)
	assert.Equal(t, 1, res.DoorCounts["Side Gate"])
}

func TestRegister_NoDeduplication(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, RegistrationOptions{RequireKnownDoor: true})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Register(ctx, "A", "Ann Lee")
		require.NoError(t, err)
	}
	agg, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, agg.DoorCounts["A"])
	assert.Equal(t, 3, agg.TotalCount)
}

func TestRegister_BroadcastFailureDoesNotFail(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("sink down")}
	svc, _ := newTestRegistrationService(t, pub, RegistrationOptions{RequireKnownDoor: true})

	res, err := svc.Register(context.Background(), "A", "Ann Lee")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalCount)
	assert.Len(t, pub.topics(), 2)
}

func TestStats_MatchesActiveSet(t *testing.T) {
	svc, store := newTestRegistrationService(t, nil, RegistrationOptions{RequireKnownDoor: true})
	ctx := context.Background()

	var lastID string
	for i, door := range []string{"A", "A", "B"} {
		res, err := svc.Register(ctx, door, fmt.Sprintf("Guest %d", i))
		require.NoError(t, err)
		lastID = res.Entry.ID
	}
	require.NoError(t, svc.DeleteEntry(ctx, lastID))

	agg, err := svc.Stats(ctx)
	require.NoError(t, err)
	entries, err := store.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.NewAggregate(entries), agg)
	assert.Equal(t, map[string]int{"A": 2}, agg.DoorCounts)
}

func TestRecentByDoor(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, RegistrationOptions{RequireKnownDoor: true})
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := svc.Register(ctx, "A", fmt.Sprintf("Guest %02d", i))
		require.NoError(t, err)
	}
	_, err := svc.Register(ctx, "B", "Other Person")
	require.NoError(t, err)

	recent, err := svc.RecentByDoor(ctx, "A", 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, "Guest 11", recent[0].Name)
	assert.Equal(t, "Guest 02", recent[9].Name)
	for i := 1; i < len(recent); i++ {
		assert.True(t, recent[i-1].Timestamp.After(recent[i].Timestamp))
	}
}

func TestAllActive_OrderedByDoorThenTime(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, RegistrationOptions{RequireKnownDoor: true})
	ctx := context.Background()
	for _, r := range [][2]string{{"B", "one"}, {"A", "two"}, {"B", "three"}, {"A", "four"}} {
		_, err := svc.Register(ctx, r[0], r[1])
		require.NoError(t, err)
	}

	all, err := svc.AllActive(ctx)
	require.NoError(t, err)
	var names []string
	for _, e := range all {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"two", "four", "one", "three"}, names)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, RegistrationOptions{})
	err := svc.DeleteEntry(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestClearActive(t *testing.T) {
	svc, _ := newTestRegistrationService(t, nil, RegistrationOptions{RequireKnownDoor: true})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Register(ctx, "A", fmt.Sprintf("Guest %d", i))
		require.NoError(t, err)
	}

	n, err := svc.ClearActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	agg, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.TotalCount)
	assert.Empty(t, agg.DoorCounts)
}

// stalledSink blocks until released, like a webhook waiting out its timeout.
type stalledSink struct {
	release chan struct{}
}

func (s *stalledSink) Publish(ctx context.Context, _ broadcast.Event) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestRegister_SlowSinkDoesNotDelayResponse(t *testing.T) {
	sink := &stalledSink{release: make(chan struct{})}
	queue := broadcast.NewAsyncPublisher("external", sink, 8, 5*time.Second, zap.NewNop())
	hub := broadcast.NewHub(zap.NewNop())
	defer hub.Close()
	sub := hub.Subscribe(4)

	fanout := broadcast.NewFanout(broadcast.NamedPublisher{Name: "hub", Publisher: hub})
	fanout.Add("external", queue)
	svc, _ := newTestRegistrationService(t, fanout, RegistrationOptions{RequireKnownDoor: true})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Register(context.Background(), "A", "Ann Lee")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Register waited on the external sink")
	}

	ev := <-sub.C
	assert.Equal(t, broadcast.TopicStatsUpdate, ev.Topic)

	close(sink.release)
	require.NoError(t, queue.Close(context.Background()))
}
