package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"ecom-service/internal/models"
	"ecom-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishPaymentCompleted publishes PaymentCompleted event
func (ep *EventPublisher) PublishPaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	key := fmt.Sprintf("payment-%d", event.PaymentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishShipmentCreated publishes ShipmentCreated event
func (ep *EventPublisher) PublishShipmentCreated(ctx context.Context, event *models.ShipmentCreatedEvent) error {
	key := fmt.Sprintf("payment-%d", event.PaymentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishDiscountIncreased publishes DiscountIncreased event
func (ep *EventPublisher) PublishDiscountIncreased(ctx context.Context, event *models.DiscountIncreasedEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onPaymentCompleted  func(context.Context, *models.PaymentCompletedEvent) error
	onDiscountIncreased func(context.Context, *models.DiscountIncreasedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPaymentCompleted registers a handler for PaymentCompleted events
func (eh *EventHandler) OnPaymentCompleted(handler func(context.Context, *models.PaymentCompletedEvent) error) {
	eh.onPaymentCompleted = handler
}

// OnDiscountIncreased registers a handler for DiscountIncreased events
func (eh *EventHandler) OnDiscountIncreased(handler func(context.Context, *models.DiscountIncreasedEvent) error) {
	eh.onDiscountIncreased = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	util.GetLogger().Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypePaymentCompleted:
		if eh.onPaymentCompleted != nil {
			var event models.PaymentCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentCompleted event: %w", err)
			}
			return eh.onPaymentCompleted(ctx, &event)
		}

	case models.EventTypeDiscountIncreased:
		if eh.onDiscountIncreased != nil {
			var event models.DiscountIncreasedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal DiscountIncreased event: %w", err)
			}
			return eh.onDiscountIncreased(ctx, &event)
		}

	default:
		util.GetLogger().Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
