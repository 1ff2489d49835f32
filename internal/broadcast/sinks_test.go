package broadcast

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureXAdd struct {
	args *redis.XAddArgs
}

func (c *captureXAdd) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	c.args = a
	return redis.NewStringResult("1-0", nil)
}

func TestRedisStreamSink_Publish(t *testing.T) {
	capture := &captureXAdd{}
	sink := NewRedisStreamSink(capture, "registration:events", 1000)

	err := sink.Publish(context.Background(), Event{Topic: TopicStatsUpdate, Payload: StatsUpdate{TotalCount: 3}})
	require.NoError(t, err)

	require.NotNil(t, capture.args)
	assert.Equal(t, "registration:events", capture.args.Stream)
	assert.Equal(t, int64(1000), capture.args.MaxLen)

	values, ok := capture.args.Values.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, TopicStatsUpdate, values["type"])
	assert.JSONEq(t, `{"doorCounts":null,"totalCount":3}`, values["data"].(string))
}

type captureMQTT struct {
	topic   string
	payload []byte
}

func (c *captureMQTT) Publish(topic string, _ bool, payload []byte) error {
	c.topic = topic
	c.payload = payload
	return nil
}

func TestMQTTSink_Publish(t *testing.T) {
	capture := &captureMQTT{}
	sink := NewMQTTSink(capture, "registration/")

	err := sink.Publish(context.Background(), Event{Topic: TopicNewNameRegistered, Payload: map[string]int{"n": 1}})
	require.NoError(t, err)
	assert.Equal(t, "registration/newNameRegistered", capture.topic)
	assert.JSONEq(t, `{"event":"newNameRegistered","data":{"n":1}}`, string(capture.payload))

	assert.Equal(t, "statsUpdate", NewMQTTSink(capture, "").Topic(TopicStatsUpdate))
}

func TestWebhookSink_Publish(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, time.Second, 0, zap.NewNop())
	require.NoError(t, sink.Publish(context.Background(), Event{Topic: TopicStatsUpdate, Payload: StatsUpdate{TotalCount: 2}}))
	assert.Equal(t, "statsUpdate", got["event"])
}

func TestWebhookSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, time.Second, 0, zap.NewNop())
	err := sink.Publish(context.Background(), Event{Topic: TopicStatsUpdate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
