package store

import (
	"context"
	"database/sql"
	"fmt"

	"ecom-service/internal/models"
)

// PayResult is what the payment transaction leaves behind on commit
type PayResult struct {
	Payment     models.Payment
	Product     models.Product
	NewQuantity int
}

// ExecutePayment settles a cart entry in one transaction: the cart row is
// deleted with a compare-and-delete (the row lock serializes concurrent
// pays; the loser observes ErrNotFound), the payment row is inserted, and
// the product quantity is decremented in place.
//
// The decrement is a fixed 1 per payment and has no floor, and the charge
// equals the unit price with no quantity multiplier. Both match the
// settlement behavior of the upstream system; see DESIGN.md.
func (s *Store) ExecutePayment(ctx context.Context, cartEntryID, userID, methodID int64) (*PayResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var entry models.CartEntry
	err = tx.GetContext(ctx, &entry,
		"DELETE FROM cart_entries WHERE id = $1 RETURNING *", cartEntryID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart entry %d: %w", cartEntryID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim cart entry: %w", err)
	}

	if entry.UserID != userID {
		// rollback puts the row back for its real owner
		return nil, fmt.Errorf("cart entry %d: %w", cartEntryID, ErrNotOwner)
	}

	var product models.Product
	err = tx.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", entry.ProductID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", entry.ProductID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	payment := models.Payment{
		MethodID:  methodID,
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  entry.Quantity,
		UnitPrice: product.Price,
		Amount:    product.Price,
	}
	err = tx.GetContext(ctx, &payment, `
		INSERT INTO payments (method_id, user_id, product_id, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		payment.MethodID, payment.UserID, payment.ProductID,
		payment.Quantity, payment.UnitPrice, payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	var newQuantity int
	err = tx.GetContext(ctx, &newQuantity,
		"UPDATE products SET quantity = quantity - 1 WHERE id = $1 RETURNING quantity",
		product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement quantity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	product.Quantity = newQuantity
	return &PayResult{Payment: payment, Product: product, NewQuantity: newQuantity}, nil
}

// GetPaymentByID retrieves a payment
func (s *Store) GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment, "SELECT * FROM payments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentsByUserID retrieves a buyer's payments, newest first
func (s *Store) GetPaymentsByUserID(ctx context.Context, userID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return payments, err
}

// CreateShipment inserts a shipment for a payment. The unique key on
// payment_id makes re-invocation for the same payment a no-op; the
// existing row is returned either way.
func (s *Store) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	query := `
		INSERT INTO shipments (payment_id, user_id, product_id, address, city, country, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (payment_id) DO NOTHING
		RETURNING id, created_at, updated_at`

	err := s.db.GetContext(ctx, shipment, query,
		shipment.PaymentID, shipment.UserID, shipment.ProductID,
		shipment.Address, shipment.City, shipment.Country, shipment.Status)
	if err == sql.ErrNoRows {
		existing, getErr := s.GetShipmentByPaymentID(ctx, shipment.PaymentID)
		if getErr != nil {
			return getErr
		}
		*shipment = *existing
		return nil
	}
	return err
}

// GetShipmentByID retrieves a shipment
func (s *Store) GetShipmentByID(ctx context.Context, id int64) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.db.GetContext(ctx, &shipment, "SELECT * FROM shipments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shipment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// GetShipmentByPaymentID retrieves the shipment bound to a payment
func (s *Store) GetShipmentByPaymentID(ctx context.Context, paymentID int64) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.db.GetContext(ctx, &shipment, "SELECT * FROM shipments WHERE payment_id = $1", paymentID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shipment for payment %d: %w", paymentID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// GetShipmentsByUserID retrieves a buyer's shipments, newest first
func (s *Store) GetShipmentsByUserID(ctx context.Context, userID int64) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := s.db.SelectContext(ctx, &shipments,
		"SELECT * FROM shipments WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return shipments, err
}

// UpdateShipmentStatus moves a shipment to a new status
func (s *Store) UpdateShipmentStatus(ctx context.Context, shipmentID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE shipments SET status = $1, updated_at = NOW() WHERE id = $2",
		status, shipmentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shipment %d: %w", shipmentID, ErrNotFound)
	}
	return nil
}

// CreateNotification inserts a notification row
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, product_id, payment_id, verb, description, seen)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, n, query,
		n.UserID, n.ProductID, n.PaymentID, n.Verb, n.Description)
}

// GetNotificationsByUserID retrieves a user's notifications, newest first
func (s *Store) GetNotificationsByUserID(ctx context.Context, userID int64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return notifications, err
}

// MarkNotificationSeen marks a user's notification as read
func (s *Store) MarkNotificationSeen(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET seen = TRUE WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateRating inserts a rating. A second rating by the same user for the
// same rateable reports ErrConflict via the unique constraint.
func (s *Store) CreateRating(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (user_id, stars, rateable_kind, rateable_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, rateable_kind, rateable_id) DO NOTHING
		RETURNING id`

	err := s.db.GetContext(ctx, &rating.ID, query,
		rating.UserID, rating.Stars, rating.Kind, rating.Rateable.ID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("rating by user %d for %s %d: %w",
			rating.UserID, rating.Kind, rating.Rateable.ID, ErrConflict)
	}
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
