//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"registration-service/internal/events"
	"registration-service/internal/testutil"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSPublisher(t *testing.T) {
	natsContainer := testutil.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	t.Run("PublishesEvent", func(t *testing.T) {
		subject := "test.students." + strings.ReplaceAll(t.Name(), "/", ".")
		nc := natsContainer.Connect(t)

		received := make(chan *nats.Msg, 1)
		_, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			received <- msg
		})
		require.NoError(t, err)
		require.NoError(t, nc.Flush())

		cfg := eventsConfig(events.DriverNATS)
		cfg.NATS.URL = natsContainer.URL
		cfg.NATS.Subject = subject

		publisher, err := events.New(cfg, discardLogger(), nil)
		require.NoError(t, err)

		registeredAt := time.Date(2025, 8, 24, 10, 0, 0, 0, time.UTC)
		require.NoError(t, publisher.Publish(context.Background(), events.StudentRegistered{
			ID:           7,
			Email:        "nats@example.com",
			Degree:       "BS Physics",
			RegisteredAt: registeredAt,
		}))
		require.NoError(t, publisher.Close())

		select {
		case msg := <-received:
			var event events.StudentRegistered
			require.NoError(t, json.Unmarshal(msg.Data, &event))
			assert.Equal(t, int64(7), event.ID)
			assert.Equal(t, "nats@example.com", event.Email)
			assert.True(t, registeredAt.Equal(event.RegisteredAt))
		case <-time.After(2 * time.Second):
			t.Fatal("event not received on NATS within timeout")
		}
	})

	t.Run("UnreachableServer", func(t *testing.T) {
		_, err := events.NewNATSPublisher("nats://127.0.0.1:1", "student.registered", discardLogger(), nil)
		assert.Error(t, err)
	})
}
