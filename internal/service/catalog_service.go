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

// CatalogStore is the persistence surface for product management
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByUserID(ctx context.Context, userID int64) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProductAttributes(ctx context.Context, productID int64) ([]models.ProductAttribute, error)
	CreateProductAttribute(ctx context.Context, attr *models.ProductAttribute) error
}

// CatalogPublisher publishes catalog change events
type CatalogPublisher interface {
	PublishDiscountIncreased(ctx context.Context, event *models.DiscountIncreasedEvent) error
}

// CatalogService handles product management for sellers
type CatalogService struct {
	store     CatalogStore
	publisher CatalogPublisher
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st CatalogStore, publisher CatalogPublisher) *CatalogService {
	return &CatalogService{
		store:     st,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// ProductRequest carries the writable product fields
type ProductRequest struct {
	Name          string             `json:"name" binding:"required"`
	Description   string             `json:"description"`
	SubCategoryID int64              `json:"subcategory_id"`
	Price         float64            `json:"price" binding:"required"`
	Discount      int                `json:"discount"`
	Quantity      int                `json:"quantity"`
	Status        bool               `json:"status"`
	Attributes    []AttributeRequest `json:"attributes"`
}

// AttributeRequest is a variant attribute in a product request
type AttributeRequest struct {
	Name     string `json:"name" binding:"required"`
	Value    string `json:"value" binding:"required"`
	Quantity int    `json:"quantity"`
}

// ProductView is a product with its derived and associated data
type ProductView struct {
	models.Product
	EffectivePrice float64                   `json:"effective_price"`
	Attributes     []models.ProductAttribute `json:"attributes,omitempty"`
}

func validateProductRequest(req *ProductRequest) error {
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if req.Discount < 0 || req.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidInput)
	}
	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return nil
}

// CreateProduct adds a product to the catalog for the requesting seller
func (cs *CatalogService) CreateProduct(ctx context.Context, userID int64, req *ProductRequest) (*ProductView, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		UserID:        userID,
		SubCategoryID: req.SubCategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Discount:      req.Discount,
		Quantity:      req.Quantity,
		Status:        req.Status,
	}
	if err := cs.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	attrs := make([]models.ProductAttribute, 0, len(req.Attributes))
	for _, a := range req.Attributes {
		attr := models.ProductAttribute{
			ProductID: product.ID,
			Name:      a.Name,
			Value:     a.Value,
			Quantity:  a.Quantity,
		}
		if err := cs.store.CreateProductAttribute(ctx, &attr); err != nil {
			return nil, fmt.Errorf("failed to create product attribute: %w", err)
		}
		attrs = append(attrs, attr)
	}

	cs.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("seller_id", userID))

	return &ProductView{Product: *product, EffectivePrice: product.EffectivePrice(), Attributes: attrs}, nil
}

// GetProduct retrieves a product with its attributes and effective price
func (cs *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductView, error) {
	product, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	attrs, err := cs.store.GetProductAttributes(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ProductView{Product: *product, EffectivePrice: product.EffectivePrice(), Attributes: attrs}, nil
}

// ListProducts retrieves the catalog
func (cs *CatalogService) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := cs.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return toViews(products), nil
}

// Dashboard retrieves the requesting seller's own products
func (cs *CatalogService) Dashboard(ctx context.Context, userID int64) ([]ProductView, error) {
	products, err := cs.store.GetProductsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toViews(products), nil
}

func toViews(products []models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, ProductView{
			Product:        products[i],
			EffectivePrice: products[i].EffectivePrice(),
		})
	}
	return views
}

// UpdateProduct overwrites a product owned by the requesting seller.
// A strict discount increase publishes a DiscountIncreased event so
// wishlisting users get notified; a decrease stays silent.
func (cs *CatalogService) UpdateProduct(ctx context.Context, id, userID int64, req *ProductRequest) (*ProductView, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	existing, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("product %d: %w", id, ErrUnauthorized)
	}

	oldDiscount := existing.Discount

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Price = req.Price
	existing.Discount = req.Discount
	existing.Quantity = req.Quantity
	existing.Status = req.Status
	if req.SubCategoryID != 0 {
		existing.SubCategoryID = req.SubCategoryID
	}

	if err := cs.store.UpdateProduct(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if req.Discount > oldDiscount {
		cs.publishDiscountIncreased(ctx, existing, oldDiscount, req.Discount)
	}

	return &ProductView{Product: *existing, EffectivePrice: existing.EffectivePrice()}, nil
}

// DeleteProduct removes a product owned by the requesting seller
func (cs *CatalogService) DeleteProduct(ctx context.Context, id, userID int64) error {
	existing, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("product %d: %w", id, ErrUnauthorized)
	}

	return cs.store.DeleteProduct(ctx, id)
}

func (cs *CatalogService) publishDiscountIncreased(ctx context.Context, product *models.Product, oldDiscount, newDiscount int) {
	event := &models.DiscountIncreasedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeDiscountIncreased,
			Timestamp: time.Now(),
		},
		ProductID:   product.ID,
		ProductName: product.Name,
		OldDiscount: oldDiscount,
		NewDiscount: newDiscount,
	}

	if err := cs.publisher.PublishDiscountIncreased(ctx, event); err != nil {
		util.EventPublishFailedTotal.WithLabelValues(models.EventTypeDiscountIncreased).Inc()
		cs.logger.Error("Failed to publish DiscountIncreased event",
			zap.Int64("product_id", product.ID),
			zap.Error(err))
	}
}
