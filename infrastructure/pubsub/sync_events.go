package pubsub

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/pubsub"

	"social-hub/infrastructure/logger"
)

type ISyncEventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
	GetSubscription(subID string) (*pubsub.Subscription, error)
}

type SyncEventPublisher struct {
	PubSubClient *pubsub.Client
}

// NewPubSub connects to Google Pub/Sub. A nil client is a valid argument to
// NewSyncEventPublisher and disables publishing.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available")
		return nil, err
	}
	return client, nil
}

func NewSyncEventPublisher(pubSubClient *pubsub.Client) ISyncEventPublisher {
	return &SyncEventPublisher{
		PubSubClient: pubSubClient,
	}
}

func (publisher *SyncEventPublisher) Publish(
	ctx context.Context,
	topicName string,
	payload []byte,
) (string, error) {
	if publisher.PubSubClient == nil {
		return "", nil
	}

	msg := &pubsub.Message{
		Data: payload,
	}

	topic := publisher.PubSubClient.Topic(topicName)

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		log.Printf("Topic %v doesn't exist - creating it", topicName)
		_, err = publisher.PubSubClient.CreateTopic(ctx, topicName)
		if err != nil {
			return "", err
		}
	}

	serverId, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", err
	}

	logger.GetLogger().WithField("server ID", serverId).Info("Sync event published")
	return serverId, nil
}

// GetSubscription returns the named subscription for a relay consumer.
func (publisher *SyncEventPublisher) GetSubscription(
	subID string,
) (*pubsub.Subscription, error) {
	if publisher.PubSubClient == nil {
		return nil, fmt.Errorf("pubsub client is not configured")
	}
	logger.GetLogger().WithField("subID", subID).Info("PubSub starting...")

	return publisher.PubSubClient.Subscription(subID), nil
}
