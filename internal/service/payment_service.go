package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecom-service/internal/models"
	"ecom-service/internal/store"
	"ecom-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentStore is the persistence surface the pay workflow needs.
// *store.Store satisfies it.
type PaymentStore interface {
	GetPaymentMethodByName(ctx context.Context, name string) (*models.PaymentMethod, error)
	ExecutePayment(ctx context.Context, cartEntryID, userID, methodID int64) (*store.PayResult, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	CreateShipment(ctx context.Context, shipment *models.Shipment) error
}

// PayPublisher publishes the events the pay workflow emits.
// *broker.EventPublisher satisfies it.
type PayPublisher interface {
	PublishPaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error
	PublishShipmentCreated(ctx context.Context, event *models.ShipmentCreatedEvent) error
}

// PayCache is the Redis surface the pay workflow uses: the per-entry lock
// and the inventory mirror. *redisclient.Client satisfies it. A nil cache
// disables both; the database transaction stays authoritative.
type PayCache interface {
	AcquirePayLock(ctx context.Context, cartEntryID int64, ttl time.Duration) (bool, error)
	ReleasePayLock(ctx context.Context, cartEntryID int64) error
	DecrementStock(ctx context.Context, productID int64, by int) (int64, bool, error)
}

// PaymentService runs the order-fulfillment workflow: payment creation,
// inventory decrement, shipment initiation and notification dispatch as an
// explicit ordered sequence instead of implicit save hooks.
type PaymentService struct {
	store     PaymentStore
	publisher PayPublisher
	cache     PayCache
	logger    *zap.Logger

	payTimeout    time.Duration
	defaultMethod string
}

// NewPaymentService creates a new payment service
func NewPaymentService(st PaymentStore, publisher PayPublisher, cache PayCache, payTimeout time.Duration, defaultMethod string) *PaymentService {
	return &PaymentService{
		store:         st,
		publisher:     publisher,
		cache:         cache,
		logger:        util.GetLogger(),
		payTimeout:    payTimeout,
		defaultMethod: defaultMethod,
	}
}

// PayRequest is the client's pay call for a cart entry
type PayRequest struct {
	Method string `json:"method"`
}

// PayResponse reports what the pay workflow produced
type PayResponse struct {
	PaymentID  int64   `json:"payment_id"`
	Amount     float64 `json:"amount"`
	UnitPrice  float64 `json:"unit_price"`
	ShipmentID *int64  `json:"shipment_id,omitempty"`
}

// Pay settles the cart entry for the requesting user.
//
// The payment insert, cart entry delete and inventory decrement commit
// atomically; shipment creation and notification dispatch follow as
// best-effort reactions. When the buyer's profile cannot back a shipment
// the payment stands: the response carries the payment alongside
// ErrProfileIncomplete so callers can retry shipment creation later.
func (ps *PaymentService) Pay(ctx context.Context, cartEntryID, userID int64, req *PayRequest) (*PayResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.Pay")
	defer span.End()

	if ps.payTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ps.payTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		util.PaymentLatency.Observe(time.Since(start).Seconds())
	}()

	methodName := ps.defaultMethod
	if req != nil && req.Method != "" {
		methodName = req.Method
	}

	method, err := ps.store.GetPaymentMethodByName(ctx, methodName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.PaymentsFailedTotal.WithLabelValues("invalid_method").Inc()
			return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, methodName)
		}
		util.PaymentsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to resolve payment method: %w", err)
	}

	if ps.cache != nil {
		acquired, lockErr := ps.cache.AcquirePayLock(ctx, cartEntryID, ps.lockTTL())
		if lockErr != nil {
			// lock is an optimization; the compare-and-delete below still serializes
			ps.logger.Warn("Pay lock unavailable, relying on transaction",
				zap.Int64("cart_entry_id", cartEntryID),
				zap.Error(lockErr))
		} else if !acquired {
			util.PaymentsFailedTotal.WithLabelValues("in_progress").Inc()
			return nil, fmt.Errorf("cart entry %d: %w", cartEntryID, ErrPaymentInProgress)
		} else {
			defer func() {
				if err := ps.cache.ReleasePayLock(context.Background(), cartEntryID); err != nil {
					ps.logger.Warn("Failed to release pay lock",
						zap.Int64("cart_entry_id", cartEntryID),
						zap.Error(err))
				}
			}()
		}
	}

	result, err := ps.store.ExecutePayment(ctx, cartEntryID, userID, method.ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			util.PaymentsFailedTotal.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("cart entry %d: %w", cartEntryID, ErrNotFound)
		case errors.Is(err, store.ErrNotOwner):
			util.PaymentsFailedTotal.WithLabelValues("unauthorized").Inc()
			return nil, fmt.Errorf("cart entry %d: %w", cartEntryID, ErrUnauthorized)
		default:
			util.PaymentsFailedTotal.WithLabelValues("db_error").Inc()
			return nil, fmt.Errorf("payment transaction failed: %w", err)
		}
	}

	payment := result.Payment
	product := result.Product
	util.PaymentsTotal.Inc()
	ps.logger.Info("Payment created",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("product_id", product.ID),
		zap.Float64("amount", payment.Amount),
		zap.Int("remaining_quantity", result.NewQuantity))

	if result.NewQuantity <= 0 {
		util.InventoryOversoldTotal.Inc()
		ps.logger.Warn("Product quantity at or below zero after payment",
			zap.Int64("product_id", product.ID),
			zap.Int("quantity", result.NewQuantity))
	}

	ps.mirrorDecrement(ctx, product.ID)

	resp := &PayResponse{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		UnitPrice: payment.UnitPrice,
	}

	shipment, shipErr := ps.initiateShipment(ctx, &payment)
	if shipErr == nil {
		resp.ShipmentID = &shipment.ID
	}

	ps.publishPaymentCompleted(ctx, &payment, &product)
	if shipErr == nil {
		ps.publishShipmentCreated(ctx, shipment)
	}

	if shipErr != nil {
		// payment is durable; the caller gets it together with the error
		return resp, shipErr
	}
	return resp, nil
}

func (ps *PaymentService) lockTTL() time.Duration {
	if ps.payTimeout > 0 {
		return ps.payTimeout
	}
	return 30 * time.Second
}

// initiateShipment creates the pending shipment from the buyer's profile.
// Keyed on the payment id, so a retry cannot duplicate.
func (ps *PaymentService) initiateShipment(ctx context.Context, payment *models.Payment) (*models.Shipment, error) {
	profile, err := ps.store.GetProfileByUserID(ctx, payment.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.ShipmentsFailedTotal.WithLabelValues("no_profile").Inc()
			return nil, fmt.Errorf("user %d: %w", payment.UserID, ErrProfileIncomplete)
		}
		util.ShipmentsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.Complete() {
		util.ShipmentsFailedTotal.WithLabelValues("incomplete_profile").Inc()
		return nil, fmt.Errorf("user %d: %w", payment.UserID, ErrProfileIncomplete)
	}

	shipment := &models.Shipment{
		PaymentID: payment.ID,
		UserID:    payment.UserID,
		ProductID: payment.ProductID,
		Address:   profile.Address,
		City:      profile.City,
		Country:   profile.Country,
		Status:    models.ShipmentStatusPending,
	}
	if err := ps.store.CreateShipment(ctx, shipment); err != nil {
		util.ShipmentsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}

	util.ShipmentsCreatedTotal.Inc()
	ps.logger.Info("Shipment created",
		zap.Int64("shipment_id", shipment.ID),
		zap.Int64("payment_id", payment.ID))
	return shipment, nil
}

func (ps *PaymentService) mirrorDecrement(ctx context.Context, productID int64) {
	if ps.cache == nil {
		return
	}
	if _, _, err := ps.cache.DecrementStock(ctx, productID, 1); err != nil {
		ps.logger.Warn("Failed to decrement inventory mirror",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
}

func (ps *PaymentService) publishPaymentCompleted(ctx context.Context, payment *models.Payment, product *models.Product) {
	event := &models.PaymentCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentCompleted,
			Timestamp: time.Now(),
		},
		PaymentID:   payment.ID,
		BuyerID:     payment.UserID,
		SellerID:    product.UserID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Amount:      payment.Amount,
	}

	if err := ps.publisher.PublishPaymentCompleted(ctx, event); err != nil {
		util.EventPublishFailedTotal.WithLabelValues(models.EventTypePaymentCompleted).Inc()
		ps.logger.Error("Failed to publish PaymentCompleted event",
			zap.Int64("payment_id", payment.ID),
			zap.Error(err))
	}
}

func (ps *PaymentService) publishShipmentCreated(ctx context.Context, shipment *models.Shipment) {
	event := &models.ShipmentCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeShipmentCreated,
			Timestamp: time.Now(),
		},
		ShipmentID: shipment.ID,
		PaymentID:  shipment.PaymentID,
		UserID:     shipment.UserID,
		ProductID:  shipment.ProductID,
	}

	if err := ps.publisher.PublishShipmentCreated(ctx, event); err != nil {
		util.EventPublishFailedTotal.WithLabelValues(models.EventTypeShipmentCreated).Inc()
		ps.logger.Error("Failed to publish ShipmentCreated event",
			zap.Int64("shipment_id", shipment.ID),
			zap.Error(err))
	}
}
