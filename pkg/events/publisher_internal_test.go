package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPublish struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	published []recordedPublish
	closed    int
	err       error
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.published = append(f.published, recordedPublish{exchange, key, msg})
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed++
	return nil
}

func newTestPublisher(ch *fakeChannel) *AMQPPublisher {
	return &AMQPPublisher{
		exchange:    "analysis_events",
		openChannel: func() (amqpChannel, error) { return ch, nil },
	}
}

func TestAMQPPublisher(t *testing.T) {
	t.Run("Should publish persistent JSON to the exchange", func(t *testing.T) {
		ch := &fakeChannel{}
		p := newTestPublisher(ch)

		err := p.PublishJSON(context.Background(), "analysis.completed", map[string]int{"overallScore": 57})
		require.NoError(t, err)
		require.Len(t, ch.published, 1)

		got := ch.published[0]
		assert.Equal(t, "analysis_events", got.exchange)
		assert.Equal(t, "analysis.completed", got.key)
		assert.Equal(t, "application/json", got.msg.ContentType)
		assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

		var body map[string]int
		require.NoError(t, json.Unmarshal(got.msg.Body, &body))
		assert.Equal(t, 57, body["overallScore"])
		assert.Equal(t, 1, ch.closed)
	})

	t.Run("Should surface broker errors", func(t *testing.T) {
		ch := &fakeChannel{err: errors.New("channel closed")}
		err := newTestPublisher(ch).PublishJSON(context.Background(), "analysis.completed", struct{}{})
		assert.EqualError(t, err, "channel closed")
	})

	t.Run("Should refuse after close", func(t *testing.T) {
		p := newTestPublisher(&fakeChannel{})
		require.NoError(t, p.Close())
		assert.ErrorIs(t, p.PublishJSON(context.Background(), "k", 1), ErrClosed)
	})

	t.Run("Should respect a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, newTestPublisher(&fakeChannel{}).PublishJSON(ctx, "k", 1), context.Canceled)
	})
}
