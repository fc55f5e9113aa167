package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"registration-service/internal/events"

	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher(t *testing.T) {
	event := events.StudentRegistered{
		ID:           7,
		Email:        "ali@example.com",
		Degree:       "CS",
		RegisteredAt: time.Date(2025, 8, 24, 10, 0, 0, 0, time.UTC),
	}

	t.Run("Publish_Success", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.NewKafkaConfig())
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var got events.StudentRegistered
			if err := json.Unmarshal(val, &got); err != nil {
				return err
			}
			if got.ID != event.ID || got.Email != event.Email {
				return errors.New("unexpected event payload")
			}
			return nil
		})

		publisher := events.NewKafkaPublisherWithProducer(producer, "student.registered", discardLogger(), nil)
		require.NoError(t, publisher.Publish(context.Background(), event))
		require.NoError(t, publisher.Close())
	})

	t.Run("Publish_BrokerError", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.NewKafkaConfig())
		producer.ExpectSendMessageAndFail(errors.New("broker unavailable"))

		publisher := events.NewKafkaPublisherWithProducer(producer, "student.registered", discardLogger(), nil)
		err := publisher.Publish(context.Background(), event)
		assert.ErrorContains(t, err, "broker unavailable")
		require.NoError(t, publisher.Close())
	})
}
