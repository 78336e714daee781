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

// CartStore is the persistence surface for cart and wishlist staging
type CartStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateCartEntry(ctx context.Context, entry *models.CartEntry) error
	GetCartEntriesByUserID(ctx context.Context, userID int64) ([]models.CartEntry, error)
	DeleteCartEntry(ctx context.Context, id, userID int64) error
	CreateWishlistEntry(ctx context.Context, entry *models.WishlistEntry) error
	GetWishlistByUserID(ctx context.Context, userID int64) ([]models.WishlistEntry, error)
}

// CartService stages purchase intents and wishlist entries
type CartService struct {
	store  CartStore
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(st CartStore) *CartService {
	return &CartService{store: st, logger: util.GetLogger()}
}

// AddToCartRequest carries the optional cart quantity
type AddToCartRequest struct {
	Quantity int `json:"quantity"`
}

// AddToCart stages a product in the requesting user's cart
func (cs *CartService) AddToCart(ctx context.Context, productID, userID int64, req *AddToCartRequest) (*models.CartEntry, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToCart")
	defer span.End()

	quantity := 1
	if req != nil && req.Quantity != 0 {
		if req.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
		}
		quantity = req.Quantity
	}

	if _, err := cs.store.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	entry := &models.CartEntry{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := cs.store.CreateCartEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	cs.logger.Info("Product added to cart",
		zap.Int64("cart_entry_id", entry.ID),
		zap.Int64("product_id", productID),
		zap.Int64("user_id", userID))
	return entry, nil
}

// ListCart retrieves the requesting user's cart
func (cs *CartService) ListCart(ctx context.Context, userID int64) ([]models.CartEntry, error) {
	return cs.store.GetCartEntriesByUserID(ctx, userID)
}

// RemoveFromCart deletes a cart entry owned by the requesting user
func (cs *CartService) RemoveFromCart(ctx context.Context, entryID, userID int64) error {
	err := cs.store.DeleteCartEntry(ctx, entryID, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("cart entry %d: %w", entryID, ErrNotFound)
	case errors.Is(err, store.ErrNotOwner):
		return fmt.Errorf("cart entry %d: %w", entryID, ErrUnauthorized)
	}
	return err
}

// AddToWishlist marks a product for discount alerts
func (cs *CartService) AddToWishlist(ctx context.Context, productID, userID int64) (*models.WishlistEntry, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToWishlist")
	defer span.End()

	if _, err := cs.store.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	entry := &models.WishlistEntry{UserID: userID, ProductID: productID}
	if err := cs.store.CreateWishlistEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("product %d already wishlisted: %w", productID, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return entry, nil
}

// ListWishlist retrieves the requesting user's wishlist
func (cs *CartService) ListWishlist(ctx context.Context, userID int64) ([]models.WishlistEntry, error) {
	return cs.store.GetWishlistByUserID(ctx, userID)
}
