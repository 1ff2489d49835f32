package broadcast

import (
	"context"
	"fmt"

	commonredis "github.com/rekk2/event-registration/common/redis"
)

// RedisStreamSink appends every event to a Redis stream as {type, data, timestamp}.
type RedisStreamSink struct {
	client commonredis.StreamPublisher
	stream string
	maxLen int64
}

// NewRedisStreamSink maxLen <= 0 leaves the stream untrimmed.
func NewRedisStreamSink(client commonredis.StreamPublisher, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

var _ Publisher = (*RedisStreamSink)(nil)

func (s *RedisStreamSink) Publish(ctx context.Context, ev Event) error {
	if _, err := commonredis.PublishJSONToStream(ctx, s.client, s.stream, s.maxLen, ev.Topic, ev.Payload); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}
