package broadcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/rekk2/event-registration/internal/telemetry"
)

// NamedPublisher a sink with a label for logs and metrics.
type NamedPublisher struct {
	Name string
	Publisher
}

// Fanout publishes to every sink in order. A failing sink does not stop the rest;
// all failures are joined into the returned error.
type Fanout struct {
	sinks []NamedPublisher
}

func NewFanout(sinks ...NamedPublisher) *Fanout {
	return &Fanout{sinks: sinks}
}

// Add appends a sink. Not safe for use concurrently with Publish; wire sinks at startup.
func (f *Fanout) Add(name string, p Publisher) {
	f.sinks = append(f.sinks, NamedPublisher{Name: name, Publisher: p})
}

func (f *Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			telemetry.BroadcastSinkErrorsTotal.WithLabelValues(s.Name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Sinks names in publish order.
func (f *Fanout) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name
	}
	return names
}
