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

// RatingStore is the persistence surface for ratings
type RatingStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateRating(ctx context.Context, rating *models.Rating) error
}

// RatingService attaches star ratings to rateable entities
type RatingService struct {
	store  RatingStore
	logger *zap.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(st RatingStore) *RatingService {
	return &RatingService{store: st, logger: util.GetLogger()}
}

// AddRatingRequest carries the stars for a rating
type AddRatingRequest struct {
	Stars int `json:"stars" binding:"required"`
}

// AddRating records a rating for the given rateable. The kind is resolved
// by an explicit switch; each arm verifies its target exists.
func (rs *RatingService) AddRating(ctx context.Context, userID int64, rateable models.Rateable, req *AddRatingRequest) (*models.Rating, error) {
	ctx, span := util.StartSpan(ctx, "RatingService.AddRating")
	defer span.End()

	if req.Stars < 1 || req.Stars > 5 {
		return nil, fmt.Errorf("%w: stars must be between 1 and 5", ErrInvalidInput)
	}

	switch rateable.Kind {
	case models.RateableProduct:
		if _, err := rs.store.GetProductByID(ctx, rateable.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("product %d: %w", rateable.ID, ErrNotFound)
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown rateable kind %q", ErrInvalidInput, rateable.Kind)
	}

	rating := &models.Rating{
		UserID:   userID,
		Stars:    req.Stars,
		Rateable: rateable,
	}
	if err := rs.store.CreateRating(ctx, rating); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%s %d already rated: %w", rateable.Kind, rateable.ID, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	rs.logger.Info("Rating added",
		zap.Int64("user_id", userID),
		zap.String("kind", rateable.Kind),
		zap.Int64("rateable_id", rateable.ID),
		zap.Int("stars", req.Stars))
	return rating, nil
}
