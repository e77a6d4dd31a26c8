// Package kafka provides the Kafka-backed event channel for deployments
// where canvas events must cross process boundaries.
package kafka

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

// CreateChannel builds a Kafka publisher and subscriber from the
// KAFKA_BROKERS environment variable. Each service joins its own consumer
// group so every FlowDeck process sees the full event stream.
func CreateChannel(logger watermill.LoggerAdapter, serviceName string) (*kafka.Publisher, *kafka.Subscriber, error) {
	brokers, err := brokersFromEnv()
	if err != nil {
		return nil, nil, err
	}

	subscriber, err := newSubscriber(brokers, serviceName, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka subscriber: %w", err)
	}

	publisher, err := newPublisher(brokers, serviceName, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka publisher: %w", err)
	}

	return publisher, subscriber, nil
}

// brokersFromEnv reads KAFKA_BROKERS as a comma-separated list, dropping
// empty entries so trailing commas and stray spaces never reach sarama.
func brokersFromEnv() ([]string, error) {
	raw := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")

	brokers := make([]string, 0, len(raw))
	for _, broker := range raw {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}

	if len(brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS environment variable is not set or empty")
	}

	return brokers, nil
}

func newSubscriber(brokers []string, serviceName string, logger watermill.LoggerAdapter) (*kafka.Subscriber, error) {
	config := kafka.DefaultSaramaSubscriberConfig()
	config.ClientID = serviceName
	// Replay from the beginning when a consumer group is new; canvas feeds
	// rebuild their history from the stream.
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	return kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: config,
			ConsumerGroup:         "cg-" + serviceName,
			OTELEnabled:           true,
		},
		logger,
	)
}

func newPublisher(brokers []string, serviceName string, logger watermill.LoggerAdapter) (*kafka.Publisher, error) {
	config := sarama.NewConfig()
	config.ClientID = serviceName
	config.Producer.Return.Successes = true

	return kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: config,
			OTELEnabled:           true,
		},
		logger,
	)
}
