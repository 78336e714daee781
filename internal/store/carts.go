package store

import (
	"context"
	"database/sql"
	"fmt"

	"ecom-service/internal/models"

	"github.com/lib/pq"
)

// CreateCartEntry stages a product in a user's cart
func (s *Store) CreateCartEntry(ctx context.Context, entry *models.CartEntry) error {
	query := `
		INSERT INTO cart_entries (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, entry, query,
		entry.UserID, entry.ProductID, entry.Quantity)
}

// GetCartEntryByID retrieves a cart entry
func (s *Store) GetCartEntryByID(ctx context.Context, id int64) (*models.CartEntry, error) {
	var entry models.CartEntry
	err := s.db.GetContext(ctx, &entry, "SELECT * FROM cart_entries WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetCartEntriesByUserID retrieves a user's cart
func (s *Store) GetCartEntriesByUserID(ctx context.Context, userID int64) ([]models.CartEntry, error) {
	var entries []models.CartEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM cart_entries WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return entries, err
}

// DeleteCartEntry removes a cart entry owned by userID
func (s *Store) DeleteCartEntry(ctx context.Context, id, userID int64) error {
	var ownerID int64
	err := s.db.GetContext(ctx, &ownerID, "SELECT user_id FROM cart_entries WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("cart entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return fmt.Errorf("cart entry %d: %w", id, ErrNotOwner)
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM cart_entries WHERE id = $1", id)
	return err
}

// CreateWishlistEntry adds a product to a user's wishlist.
// A duplicate (user, product) pair reports ErrConflict.
func (s *Store) CreateWishlistEntry(ctx context.Context, entry *models.WishlistEntry) error {
	query := `
		INSERT INTO wishlist_entries (user_id, product_id)
		VALUES ($1, $2)
		RETURNING id`

	err := s.db.GetContext(ctx, &entry.ID, query, entry.UserID, entry.ProductID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return fmt.Errorf("wishlist entry for user %d product %d: %w",
			entry.UserID, entry.ProductID, ErrConflict)
	}
	return err
}

// GetWishlistByUserID retrieves a user's wishlist
func (s *Store) GetWishlistByUserID(ctx context.Context, userID int64) ([]models.WishlistEntry, error) {
	var entries []models.WishlistEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM wishlist_entries WHERE user_id = $1 ORDER BY id", userID)
	return entries, err
}

// GetWishlistUserIDsByProductID retrieves every user wishlisting a product
func (s *Store) GetWishlistUserIDsByProductID(ctx context.Context, productID int64) ([]int64, error) {
	var userIDs []int64
	err := s.db.SelectContext(ctx, &userIDs,
		"SELECT user_id FROM wishlist_entries WHERE product_id = $1 ORDER BY user_id", productID)
	return userIDs, err
}
