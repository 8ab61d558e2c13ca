package service

import (
	"context"
	"encoding/json"

	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.NotificationMessage)
	Broadcast(notification dto.NotificationMessage)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  NotificationDelivery
	log       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery NotificationDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.NotificationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("ConsumerService", "Failed to unmarshal notification", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if payload.UserId == uuid.Nil {
		cs.delivery.Broadcast(payload)
	} else {
		cs.delivery.Send(payload.UserId, payload)
	}

	cs.log.Debug("ConsumerService", "Notification delivered", map[string]interface{}{
		"type":    payload.Type,
		"user_id": payload.UserId,
	})
	msg.Ack()
}
