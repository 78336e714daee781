package models

import "time"

// Product represents a sellable item in the catalog
type Product struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	SubCategoryID int64     `db:"subcategory_id" json:"subcategory_id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description,omitempty"`
	Price         float64   `db:"price" json:"price"`
	Discount      int       `db:"discount" json:"discount"`
	Quantity      int       `db:"quantity" json:"quantity"`
	Status        bool      `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// EffectivePrice returns the price after applying the discount percentage
func (p *Product) EffectivePrice() float64 {
	return p.Price * (1 - float64(p.Discount)/100)
}

// Category groups subcategories
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// SubCategory is the category a product belongs to
type SubCategory struct {
	ID         int64  `db:"id" json:"id"`
	CategoryID int64  `db:"category_id" json:"category_id"`
	Name       string `db:"name" json:"name"`
	Gender     string `db:"gender" json:"gender"`
}

// ProductAttribute is a named variant of a product (size, color) with its own stock
type ProductAttribute struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	Value     string `db:"value" json:"value"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// Profile holds the delivery details for a user
type Profile struct {
	UserID  int64  `db:"user_id" json:"user_id"`
	Address string `db:"address" json:"address"`
	City    string `db:"city" json:"city"`
	Country string `db:"country" json:"country"`
}

// Complete reports whether the profile can back a shipment
func (p *Profile) Complete() bool {
	return p.Address != "" && p.City != "" && p.Country != ""
}

// PaymentMethod is a supported payment provider
type PaymentMethod struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CartEntry stages a product for purchase by a user
type CartEntry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Payment is the immutable record of a completed purchase.
// Amount equals UnitPrice: the charge is per cart entry, not per unit,
// matching the settlement totals of the upstream system.
type Payment struct {
	ID        int64     `db:"id" json:"id"`
	MethodID  int64     `db:"method_id" json:"method_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	UnitPrice float64   `db:"unit_price" json:"unit_price"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Shipment tracks delivery of a paid product
type Shipment struct {
	ID        int64     `db:"id" json:"id"`
	PaymentID int64     `db:"payment_id" json:"payment_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	Country   string    `db:"country" json:"country"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Shipment statuses
const (
	ShipmentStatusPending    = "pending"
	ShipmentStatusDispatched = "dispatched"
	ShipmentStatusOnWay      = "onway"
	ShipmentStatusDelivered  = "delivered"
	ShipmentStatusCancelled  = "cancelled"
	ShipmentStatusReturned   = "returned"
)

// ShipmentStatusValid reports whether s is a known shipment status
func ShipmentStatusValid(s string) bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusDispatched, ShipmentStatusOnWay,
		ShipmentStatusDelivered, ShipmentStatusCancelled, ShipmentStatusReturned:
		return true
	}
	return false
}

// ShipmentStatusTerminal reports whether s admits no further transitions
func ShipmentStatusTerminal(s string) bool {
	switch s {
	case ShipmentStatusDelivered, ShipmentStatusCancelled, ShipmentStatusReturned:
		return true
	}
	return false
}

// Notification is a message delivered to a user's inbox
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	ProductID   int64     `db:"product_id" json:"product_id"`
	PaymentID   *int64    `db:"payment_id" json:"payment_id,omitempty"`
	Verb        string    `db:"verb" json:"verb"`
	Description string    `db:"description" json:"description"`
	Seen        bool      `db:"seen" json:"seen"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// WishlistEntry marks a product a user wants discount alerts for
type WishlistEntry struct {
	ID        int64 `db:"id" json:"id"`
	UserID    int64 `db:"user_id" json:"user_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
}

// Rateable kinds
const (
	RateableProduct = "product"
)

// Rateable names the entity a rating attaches to, resolved by an
// explicit switch rather than a reflective lookup
type Rateable struct {
	Kind string `db:"rateable_kind" json:"kind"`
	ID   int64  `db:"rateable_id" json:"id"`
}

// Rating is a 1-5 star review of a rateable entity
type Rating struct {
	ID     int64 `db:"id" json:"id"`
	UserID int64 `db:"user_id" json:"user_id"`
	Stars  int   `db:"stars" json:"stars"`
	Rateable
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
