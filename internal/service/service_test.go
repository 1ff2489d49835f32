package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rekk2/event-registration/internal/broadcast"
	"github.com/rekk2/event-registration/internal/repository"

	"github.com/stretchr/testify/require"
)

// fakeClock returns strictly increasing times one second apart.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev broadcast.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Topic
	}
	return out
}

func seedDoors(t *testing.T, store *repository.MemoryStore, doors ...string) {
	t.Helper()
	for _, d := range doors {
		_, err := store.CreateDoor(context.Background(), d)
		require.NoError(t, err)
	}
}
