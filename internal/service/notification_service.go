package service

import (
	"context"
	"errors"
	"fmt"

	"ecom-service/internal/models"
	"ecom-service/internal/store"
	"ecom-service/internal/util"

	"go.uber.org/zap"
)

// Notification verbs
const (
	VerbPaymentReceived  = "payment received"
	VerbPaymentCompleted = "payment completed"
	VerbDiscountApplied  = "discount applied"
)

// NotificationStore is the persistence surface for inbox delivery
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkNotificationSeen(ctx context.Context, id, userID int64) error
	GetWishlistUserIDsByProductID(ctx context.Context, productID int64) ([]int64, error)
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// NotificationService writes inbox notifications. It consumes events from
// the broker (via the notification worker), so delivery is at-least-once
// and decoupled from the pay transaction.
type NotificationService struct {
	store  NotificationStore
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(st NotificationStore) *NotificationService {
	return &NotificationService{store: st, logger: util.GetLogger()}
}

// Notify writes one notification to a user's inbox
func (ns *NotificationService) Notify(ctx context.Context, n *models.Notification, kind string) error {
	if err := ns.store.CreateNotification(ctx, n); err != nil {
		util.NotificationsFailedTotal.Inc()
		ns.logger.Error("Failed to dispatch notification",
			zap.Int64("user_id", n.UserID),
			zap.String("verb", n.Verb),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	util.NotificationsDispatchedTotal.WithLabelValues(kind).Inc()
	return nil
}

// HandlePaymentCompleted notifies the seller and the buyer about a payment.
// Idempotent per event id; a redelivered event writes nothing twice.
func (ns *NotificationService) HandlePaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationService.HandlePaymentCompleted")
	defer span.End()

	processed, err := ns.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ns.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	paymentID := event.PaymentID

	sellerNote := &models.Notification{
		UserID:      event.SellerID,
		ProductID:   event.ProductID,
		PaymentID:   &paymentID,
		Verb:        VerbPaymentReceived,
		Description: fmt.Sprintf("A customer has successfully paid for %s.", event.ProductName),
	}
	if err := ns.Notify(ctx, sellerNote, "payment_seller"); err != nil {
		return err
	}

	buyerNote := &models.Notification{
		UserID:      event.BuyerID,
		ProductID:   event.ProductID,
		PaymentID:   &paymentID,
		Verb:        VerbPaymentCompleted,
		Description: fmt.Sprintf("You have successfully paid for %s.", event.ProductName),
	}
	if err := ns.Notify(ctx, buyerNote, "payment_buyer"); err != nil {
		return err
	}

	if err := ns.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		ns.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}

// HandleDiscountIncreased notifies every user wishlisting the product.
// Only a strict increase fans out; a 0 -> N increase counts, since that is
// the moment a discount first appears.
func (ns *NotificationService) HandleDiscountIncreased(ctx context.Context, event *models.DiscountIncreasedEvent) error {
	ctx, span := util.StartSpan(ctx, "NotificationService.HandleDiscountIncreased")
	defer span.End()

	if event.NewDiscount <= event.OldDiscount {
		return nil
	}

	processed, err := ns.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ns.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	userIDs, err := ns.store.GetWishlistUserIDsByProductID(ctx, event.ProductID)
	if err != nil {
		return fmt.Errorf("failed to load wishlist users: %w", err)
	}

	description := fmt.Sprintf("%s discount has been applied. Old discount: %d, New discount: %d.",
		event.ProductName, event.OldDiscount, event.NewDiscount)

	for _, userID := range userIDs {
		n := &models.Notification{
			UserID:      userID,
			ProductID:   event.ProductID,
			Verb:        VerbDiscountApplied,
			Description: description,
		}
		if err := ns.Notify(ctx, n, "discount"); err != nil {
			return err
		}
		util.DiscountNotificationsTotal.Inc()
	}

	if err := ns.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		ns.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	ns.logger.Info("Discount notifications dispatched",
		zap.Int64("product_id", event.ProductID),
		zap.Int("recipients", len(userIDs)))
	return nil
}

// ListNotifications retrieves the requesting user's inbox, newest first
func (ns *NotificationService) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return ns.store.GetNotificationsByUserID(ctx, userID)
}

// MarkSeen marks one of the requesting user's notifications as read
func (ns *NotificationService) MarkSeen(ctx context.Context, id, userID int64) error {
	err := ns.store.MarkNotificationSeen(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return err
}
