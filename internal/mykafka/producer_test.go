package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_PublishEvent(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &Producer{writer: w}

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	err := p.PublishEvent(context.Background(), TopicProductEvents, "p-1", Event{Type: "product_created", ID: "p-1", Name: "Lamp", At: at})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, TopicProductEvents, msg.Topic)
	assert.Equal(t, "p-1", string(msg.Key))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "product_created", got.Type)
	assert.Equal(t, "Lamp", got.Name)
	assert.True(t, at.Equal(got.At))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishEventError(t *testing.T) {
	t.Parallel()

	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.PublishEvent(context.Background(), TopicAdminEvents, "a", Event{Type: "admin_created"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestProducer_Disabled(t *testing.T) {
	t.Parallel()

	p := NewProducer(nil)
	assert.False(t, p.Enabled())
	require.NoError(t, p.PublishEvent(context.Background(), TopicProductEvents, "k", Event{}))
	require.NoError(t, p.Close())

	var nilProducer *Producer
	require.NoError(t, nilProducer.PublishEvent(context.Background(), TopicProductEvents, "k", Event{}))
}

func TestProducer_UnmarshalableEvent(t *testing.T) {
	t.Parallel()

	p := &Producer{writer: &fakeWriter{}}
	err := p.PublishEvent(context.Background(), TopicProductEvents, "k", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}

func TestNewProducer_WithBrokers(t *testing.T) {
	t.Parallel()

	p := NewProducer([]string{"localhost:9092"})
	assert.True(t, p.Enabled())
	require.NoError(t, p.Close())
}
