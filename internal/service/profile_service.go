package service

import (
	"context"
	"errors"
	"fmt"

	"ecom-service/internal/models"
	"ecom-service/internal/store"
)

// ProfileStore is the persistence surface for delivery profiles
type ProfileStore interface {
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
}

// ProfileService manages the delivery details shipments are built from
type ProfileService struct {
	store ProfileStore
}

// NewProfileService creates a new profile service
func NewProfileService(st ProfileStore) *ProfileService {
	return &ProfileService{store: st}
}

// GetProfile retrieves the requesting user's delivery profile
func (ps *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := ps.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("profile for user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return profile, nil
}

// ProfileRequest carries the writable profile fields
type ProfileRequest struct {
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// UpsertProfile creates or replaces the requesting user's delivery profile
func (ps *ProfileService) UpsertProfile(ctx context.Context, userID int64, req *ProfileRequest) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:  userID,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
	}
	if err := ps.store.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}
