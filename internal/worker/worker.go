package worker

import (
	"context"

	"ecom-service/internal/broker"
	"ecom-service/internal/service"
	"ecom-service/internal/util"
)

// NotificationWorker consumes payment and discount events and turns them
// into inbox notifications. Delivery is at-least-once: a failed handler
// leaves the message uncommitted, and the service dedupes by event id.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, notifications *service.NotificationService) *NotificationWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnPaymentCompleted(notifications.HandlePaymentCompleted)
	eventHandler.OnDiscountIncreased(notifications.HandleDiscountIncreased)

	return &NotificationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	util.GetLogger().Info("Stopping notification worker")
	return w.consumer.Close()
}
