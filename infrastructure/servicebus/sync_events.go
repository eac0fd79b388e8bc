package servicebus

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"social-hub/infrastructure/logger"
)

type ISyncEventBus interface {
	SendMessage(message []byte) error
	GetMessage(ctx context.Context, count int) ([][]byte, error)
}

type SyncEventBus struct {
	AzservicebusClient *azservicebus.Client
	Queue              string
}

// NewServiceBus connects to an Azure Service Bus namespace with the default
// credential chain. A nil client disables the bus.
func NewServiceBus(namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure credential not available")
		return nil, err
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Service Bus not available")
		return nil, err
	}
	return client, nil
}

func NewSyncEventBus(azServiceBusClient *azservicebus.Client, queue string) ISyncEventBus {
	return &SyncEventBus{AzservicebusClient: azServiceBusClient, Queue: queue}
}

func (bus *SyncEventBus) SendMessage(message []byte) error {
	if bus.AzservicebusClient == nil {
		return nil
	}

	sender, err := bus.AzservicebusClient.NewSender(bus.Queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		err := sender.Close(ctx)
		if err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	sbMessage := &azservicebus.Message{
		Body: message,
	}
	err = sender.SendMessage(context.Background(), sbMessage, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}

	return nil
}

// GetMessage drains up to count messages from the queue and completes them.
// A nil client returns nothing.
func (bus *SyncEventBus) GetMessage(ctx context.Context, count int) ([][]byte, error) {
	if bus.AzservicebusClient == nil {
		return nil, nil
	}

	receiver, err := bus.AzservicebusClient.NewReceiverForQueue(bus.Queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new receiver service bus.")
		return nil, err
	}
	defer func(receiver *azservicebus.Receiver, ctx context.Context) {
		err := receiver.Close(ctx)
		if err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing receiver.")
		}
	}(receiver, context.Background())

	messages, err := receiver.ReceiveMessages(ctx, count, nil)
	if err != nil {
		return nil, err
	}

	bodies := make([][]byte, 0, len(messages))
	for _, message := range messages {
		bodies = append(bodies, message.Body)

		if err := receiver.CompleteMessage(ctx, message, nil); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while completing message.")
		}
	}
	return bodies, nil
}
