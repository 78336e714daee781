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

// ShipmentStore is the persistence surface for delivery tracking
type ShipmentStore interface {
	GetShipmentByID(ctx context.Context, id int64) (*models.Shipment, error)
	GetShipmentsByUserID(ctx context.Context, userID int64) ([]models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, shipmentID int64, status string) error
}

// ShipmentService tracks deliveries created by the pay workflow
type ShipmentService struct {
	store  ShipmentStore
	logger *zap.Logger
}

// NewShipmentService creates a new shipment service
func NewShipmentService(st ShipmentStore) *ShipmentService {
	return &ShipmentService{store: st, logger: util.GetLogger()}
}

// ListShipments retrieves the requesting user's shipments
func (ss *ShipmentService) ListShipments(ctx context.Context, userID int64) ([]models.Shipment, error) {
	return ss.store.GetShipmentsByUserID(ctx, userID)
}

// UpdateStatusRequest carries the target shipment status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a shipment to a new status. Terminal statuses
// (delivered, cancelled, returned) are frozen.
func (ss *ShipmentService) UpdateStatus(ctx context.Context, shipmentID int64, req *UpdateStatusRequest) (*models.Shipment, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.UpdateStatus")
	defer span.End()

	if !models.ShipmentStatusValid(req.Status) {
		return nil, fmt.Errorf("%w: unknown shipment status %q", ErrInvalidInput, req.Status)
	}

	shipment, err := ss.store.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("shipment %d: %w", shipmentID, ErrNotFound)
		}
		return nil, err
	}

	if models.ShipmentStatusTerminal(shipment.Status) {
		return nil, fmt.Errorf("%w: shipment %d is already %s", ErrInvalidInput, shipmentID, shipment.Status)
	}

	if err := ss.store.UpdateShipmentStatus(ctx, shipmentID, req.Status); err != nil {
		return nil, fmt.Errorf("failed to update shipment status: %w", err)
	}

	ss.logger.Info("Shipment status updated",
		zap.Int64("shipment_id", shipmentID),
		zap.String("from", shipment.Status),
		zap.String("to", req.Status))

	shipment.Status = req.Status
	return shipment, nil
}
