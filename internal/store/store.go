package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecom-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Sentinel errors surfaced by store operations. Services translate these
// into their own taxonomy with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrNotOwner = errors.New("not owner")
	ErrConflict = errors.New("already exists")
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateProduct inserts a product and fills in its generated fields
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (user_id, subcategory_id, name, description, price, discount, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, product, query,
		product.UserID, product.SubCategoryID, product.Name, product.Description,
		product.Price, product.Discount, product.Quantity, product.Status)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products, newest first
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY created_at DESC")
	return products, err
}

// GetProductsByUserID retrieves the products a seller owns
func (s *Store) GetProductsByUserID(ctx context.Context, userID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return products, err
}

// UpdateProduct overwrites the mutable product fields
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, discount = $4, quantity = $5, status = $6, subcategory_id = $7
		WHERE id = $8`,
		product.Name, product.Description, product.Price, product.Discount,
		product.Quantity, product.Status, product.SubCategoryID, product.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", product.ID, ErrNotFound)
	}
	return nil
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetProductAttributes retrieves the variant attributes of a product
func (s *Store) GetProductAttributes(ctx context.Context, productID int64) ([]models.ProductAttribute, error) {
	var attrs []models.ProductAttribute
	err := s.db.SelectContext(ctx, &attrs,
		"SELECT * FROM product_attributes WHERE product_id = $1 ORDER BY id", productID)
	return attrs, err
}

// CreateProductAttribute inserts a variant attribute for a product
func (s *Store) CreateProductAttribute(ctx context.Context, attr *models.ProductAttribute) error {
	query := `
		INSERT INTO product_attributes (product_id, name, value, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return s.db.GetContext(ctx, &attr.ID, query,
		attr.ProductID, attr.Name, attr.Value, attr.Quantity)
}

// GetPaymentMethodByName looks up a payment method
func (s *Store) GetPaymentMethodByName(ctx context.Context, name string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := s.db.GetContext(ctx, &method, "SELECT * FROM payment_methods WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment method %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// GetProfileByUserID retrieves the delivery profile for a user
func (s *Store) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile creates or replaces a user's delivery profile
func (s *Store) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, address, city, country)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET address = $2, city = $3, country = $4`,
		profile.UserID, profile.Address, profile.City, profile.Country)
	return err
}
