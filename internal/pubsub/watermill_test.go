package pubsub

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	bridge := NewWatermillBridge(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	t.Cleanup(func() { _ = bridge.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, "signin.login.failed", func(_ context.Context, msg Message) error {
		received <- msg
		return nil
	}))

	err := bridge.Publish(ctx, Message{
		Topic:    "signin.login.failed",
		Payload:  []byte(`{"email":"valid@gmail.com"}`),
		Metadata: map[string]string{"source": "test"},
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "signin.login.failed", msg.Topic)
		assert.JSONEq(t, `{"email":"valid@gmail.com"}`, string(msg.Payload))
		assert.Equal(t, map[string]string{"source": "test"}, msg.Metadata)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestWatermillBridge_NackRedelivers(t *testing.T) {
	bridge := NewWatermillBridge(nil)
	t.Cleanup(func() { _ = bridge.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts atomic.Int32
	done := make(chan struct{})
	require.NoError(t, bridge.Subscribe(ctx, "topic", func(context.Context, Message) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "topic", Payload: []byte("x")}))

	select {
	case <-done:
		assert.Equal(t, int32(2), attempts.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("message was not redelivered")
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.With(watermill.LogFields{"component": "bus"}).Error("publish failed", errors.New("closed"), watermill.LogFields{"topic": "t"})
	out := buf.String()
	assert.Contains(t, out, "publish failed")
	assert.Contains(t, out, "component=bus")
	assert.Contains(t, out, "topic=t")
	assert.Contains(t, out, "error=closed")

	buf.Reset()
	adapter.Trace("tick", nil)
	assert.Contains(t, buf.String(), "level=DEBUG")
}
