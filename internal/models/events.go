package models

import "time"

// Event types
const (
	EventTypePaymentCompleted  = "PAYMENT_COMPLETED"
	EventTypeShipmentCreated   = "SHIPMENT_CREATED"
	EventTypeDiscountIncreased = "DISCOUNT_INCREASED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentCompletedEvent published after a cart entry is paid for.
// The notification worker turns it into seller and buyer notifications.
type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID   int64   `json:"payment_id"`
	BuyerID     int64   `json:"buyer_id"`
	SellerID    int64   `json:"seller_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Amount      float64 `json:"amount"`
}

// ShipmentCreatedEvent published once a pending shipment exists for a payment
type ShipmentCreatedEvent struct {
	BaseEvent
	ShipmentID int64 `json:"shipment_id"`
	PaymentID  int64 `json:"payment_id"`
	UserID     int64 `json:"user_id"`
	ProductID  int64 `json:"product_id"`
}

// DiscountIncreasedEvent published when a product's discount is raised.
// Fanned out to every user with the product on their wishlist.
type DiscountIncreasedEvent struct {
	BaseEvent
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	OldDiscount int    `json:"old_discount"`
	NewDiscount int    `json:"new_discount"`
}
