package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ecom-service/internal/models"
	"ecom-service/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store covering every
// service-facing interface in this package.
type fakeStore struct {
	mu sync.Mutex

	products    map[int64]*models.Product
	attrs       map[int64][]models.ProductAttribute
	methods     map[string]*models.PaymentMethod
	profiles    map[int64]*models.Profile
	cartEntries map[int64]*models.CartEntry
	wishlist    []*models.WishlistEntry
	payments    map[int64]*models.Payment
	shipments   map[int64]*models.Shipment
	notes       []*models.Notification
	ratings     map[string]*models.Rating
	processed   map[string]bool

	nextID int64

	failCreateShipment error
}

func newFakeStore() *fakeStore {
	fs := &fakeStore{
		products:    make(map[int64]*models.Product),
		attrs:       make(map[int64][]models.ProductAttribute),
		methods:     make(map[string]*models.PaymentMethod),
		profiles:    make(map[int64]*models.Profile),
		cartEntries: make(map[int64]*models.CartEntry),
		payments:    make(map[int64]*models.Payment),
		shipments:   make(map[int64]*models.Shipment),
		ratings:     make(map[string]*models.Rating),
		processed:   make(map[string]bool),
	}
	for i, name := range []string{"visa", "mastercard", "paypal", "applepay", "googlepay"} {
		fs.methods[name] = &models.PaymentMethod{ID: int64(i + 1), Name: name}
	}
	return fs
}

func (fs *fakeStore) id() int64 {
	fs.nextID++
	return fs.nextID
}

func (fs *fakeStore) addProduct(p models.Product) *models.Product {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if p.ID == 0 {
		p.ID = fs.id()
	}
	p.CreatedAt = time.Now()
	fs.products[p.ID] = &p
	return &p
}

func (fs *fakeStore) addCartEntry(e models.CartEntry) *models.CartEntry {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if e.ID == 0 {
		e.ID = fs.id()
	}
	if e.Quantity == 0 {
		e.Quantity = 1
	}
	e.CreatedAt = time.Now()
	fs.cartEntries[e.ID] = &e
	return &e
}

func (fs *fakeStore) addProfile(p models.Profile) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.profiles[p.UserID] = &p
}

func (fs *fakeStore) addWishlist(userID, productID int64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.wishlist = append(fs.wishlist, &models.WishlistEntry{ID: fs.id(), UserID: userID, ProductID: productID})
}

// PaymentStore

func (fs *fakeStore) GetPaymentMethodByName(ctx context.Context, name string) (*models.PaymentMethod, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	method, ok := fs.methods[name]
	if !ok {
		return nil, fmt.Errorf("payment method %q: %w", name, store.ErrNotFound)
	}
	m := *method
	return &m, nil
}

func (fs *fakeStore) ExecutePayment(ctx context.Context, cartEntryID, userID, methodID int64) (*store.PayResult, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, ok := fs.cartEntries[cartEntryID]
	if !ok {
		return nil, fmt.Errorf("cart entry %d: %w", cartEntryID, store.ErrNotFound)
	}
	if entry.UserID != userID {
		return nil, fmt.Errorf("cart entry %d: %w", cartEntryID, store.ErrNotOwner)
	}
	product, ok := fs.products[entry.ProductID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", entry.ProductID, store.ErrNotFound)
	}

	delete(fs.cartEntries, cartEntryID)

	payment := models.Payment{
		ID:        fs.id(),
		MethodID:  methodID,
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  entry.Quantity,
		UnitPrice: product.Price,
		Amount:    product.Price,
		CreatedAt: time.Now(),
	}
	fs.payments[payment.ID] = &payment

	product.Quantity--

	p := *product
	return &store.PayResult{Payment: payment, Product: p, NewQuantity: p.Quantity}, nil
}

func (fs *fakeStore) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	profile, ok := fs.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %d: %w", userID, store.ErrNotFound)
	}
	p := *profile
	return &p, nil
}

func (fs *fakeStore) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.failCreateShipment != nil {
		return fs.failCreateShipment
	}
	for _, existing := range fs.shipments {
		if existing.PaymentID == shipment.PaymentID {
			*shipment = *existing
			return nil
		}
	}
	shipment.ID = fs.id()
	shipment.CreatedAt = time.Now()
	shipment.UpdatedAt = shipment.CreatedAt
	copied := *shipment
	fs.shipments[shipment.ID] = &copied
	return nil
}

// CatalogStore

func (fs *fakeStore) CreateProduct(ctx context.Context, product *models.Product) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	product.ID = fs.id()
	product.CreatedAt = time.Now()
	copied := *product
	fs.products[product.ID] = &copied
	return nil
}

func (fs *fakeStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	product, ok := fs.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	p := *product
	return &p, nil
}

func (fs *fakeStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var products []models.Product
	for _, p := range fs.products {
		products = append(products, *p)
	}
	return products, nil
}

func (fs *fakeStore) GetProductsByUserID(ctx context.Context, userID int64) ([]models.Product, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var products []models.Product
	for _, p := range fs.products {
		if p.UserID == userID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (fs *fakeStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.products[product.ID]; !ok {
		return fmt.Errorf("product %d: %w", product.ID, store.ErrNotFound)
	}
	copied := *product
	fs.products[product.ID] = &copied
	return nil
}

func (fs *fakeStore) DeleteProduct(ctx context.Context, id int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	delete(fs.products, id)
	return nil
}

func (fs *fakeStore) GetProductAttributes(ctx context.Context, productID int64) ([]models.ProductAttribute, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.attrs[productID], nil
}

func (fs *fakeStore) CreateProductAttribute(ctx context.Context, attr *models.ProductAttribute) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	attr.ID = fs.id()
	fs.attrs[attr.ProductID] = append(fs.attrs[attr.ProductID], *attr)
	return nil
}

// CartStore

func (fs *fakeStore) CreateCartEntry(ctx context.Context, entry *models.CartEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	entry.ID = fs.id()
	entry.CreatedAt = time.Now()
	copied := *entry
	fs.cartEntries[entry.ID] = &copied
	return nil
}

func (fs *fakeStore) GetCartEntriesByUserID(ctx context.Context, userID int64) ([]models.CartEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var entries []models.CartEntry
	for _, e := range fs.cartEntries {
		if e.UserID == userID {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (fs *fakeStore) DeleteCartEntry(ctx context.Context, id, userID int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	entry, ok := fs.cartEntries[id]
	if !ok {
		return fmt.Errorf("cart entry %d: %w", id, store.ErrNotFound)
	}
	if entry.UserID != userID {
		return fmt.Errorf("cart entry %d: %w", id, store.ErrNotOwner)
	}
	delete(fs.cartEntries, id)
	return nil
}

func (fs *fakeStore) CreateWishlistEntry(ctx context.Context, entry *models.WishlistEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, existing := range fs.wishlist {
		if existing.UserID == entry.UserID && existing.ProductID == entry.ProductID {
			return fmt.Errorf("wishlist entry: %w", store.ErrConflict)
		}
	}
	entry.ID = fs.id()
	copied := *entry
	fs.wishlist = append(fs.wishlist, &copied)
	return nil
}

func (fs *fakeStore) GetWishlistByUserID(ctx context.Context, userID int64) ([]models.WishlistEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var entries []models.WishlistEntry
	for _, e := range fs.wishlist {
		if e.UserID == userID {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (fs *fakeStore) GetWishlistUserIDsByProductID(ctx context.Context, productID int64) ([]int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var userIDs []int64
	for _, e := range fs.wishlist {
		if e.ProductID == productID {
			userIDs = append(userIDs, e.UserID)
		}
	}
	return userIDs, nil
}

// ShipmentStore

func (fs *fakeStore) GetShipmentByID(ctx context.Context, id int64) (*models.Shipment, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	shipment, ok := fs.shipments[id]
	if !ok {
		return nil, fmt.Errorf("shipment %d: %w", id, store.ErrNotFound)
	}
	s := *shipment
	return &s, nil
}

func (fs *fakeStore) GetShipmentsByUserID(ctx context.Context, userID int64) ([]models.Shipment, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var shipments []models.Shipment
	for _, s := range fs.shipments {
		if s.UserID == userID {
			shipments = append(shipments, *s)
		}
	}
	return shipments, nil
}

func (fs *fakeStore) UpdateShipmentStatus(ctx context.Context, shipmentID int64, status string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	shipment, ok := fs.shipments[shipmentID]
	if !ok {
		return fmt.Errorf("shipment %d: %w", shipmentID, store.ErrNotFound)
	}
	shipment.Status = status
	shipment.UpdatedAt = time.Now()
	return nil
}

// NotificationStore

func (fs *fakeStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n.ID = fs.id()
	n.CreatedAt = time.Now()
	copied := *n
	fs.notes = append(fs.notes, &copied)
	return nil
}

func (fs *fakeStore) GetNotificationsByUserID(ctx context.Context, userID int64) ([]models.Notification, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var notifications []models.Notification
	for _, n := range fs.notes {
		if n.UserID == userID {
			notifications = append(notifications, *n)
		}
	}
	return notifications, nil
}

func (fs *fakeStore) MarkNotificationSeen(ctx context.Context, id, userID int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, n := range fs.notes {
		if n.ID == id && n.UserID == userID {
			n.Seen = true
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, store.ErrNotFound)
}

func (fs *fakeStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.processed[eventID], nil
}

func (fs *fakeStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.processed[eventID] = true
	return nil
}

// RatingStore

func (fs *fakeStore) CreateRating(ctx context.Context, rating *models.Rating) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	key := fmt.Sprintf("%d/%s/%d", rating.UserID, rating.Kind, rating.Rateable.ID)
	if _, ok := fs.ratings[key]; ok {
		return fmt.Errorf("rating: %w", store.ErrConflict)
	}
	rating.ID = fs.id()
	copied := *rating
	fs.ratings[key] = &copied
	return nil
}

// ProfileStore

func (fs *fakeStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	copied := *profile
	fs.profiles[profile.UserID] = &copied
	return nil
}

// fakePublisher records published events
type fakePublisher struct {
	mu                sync.Mutex
	paymentCompleted  []*models.PaymentCompletedEvent
	shipmentCreated   []*models.ShipmentCreatedEvent
	discountIncreased []*models.DiscountIncreasedEvent
	err               error
}

func (fp *fakePublisher) PublishPaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.err != nil {
		return fp.err
	}
	fp.paymentCompleted = append(fp.paymentCompleted, event)
	return nil
}

func (fp *fakePublisher) PublishShipmentCreated(ctx context.Context, event *models.ShipmentCreatedEvent) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.err != nil {
		return fp.err
	}
	fp.shipmentCreated = append(fp.shipmentCreated, event)
	return nil
}

func (fp *fakePublisher) PublishDiscountIncreased(ctx context.Context, event *models.DiscountIncreasedEvent) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.err != nil {
		return fp.err
	}
	fp.discountIncreased = append(fp.discountIncreased, event)
	return nil
}

// fakeCache implements PayCache with a plain map lock
type fakeCache struct {
	mu        sync.Mutex
	locks     map[int64]bool
	inventory map[int64]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{locks: make(map[int64]bool), inventory: make(map[int64]int64)}
}

func (fc *fakeCache) AcquirePayLock(ctx context.Context, cartEntryID int64, ttl time.Duration) (bool, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.locks[cartEntryID] {
		return false, nil
	}
	fc.locks[cartEntryID] = true
	return true, nil
}

func (fc *fakeCache) ReleasePayLock(ctx context.Context, cartEntryID int64) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.locks, cartEntryID)
	return nil
}

func (fc *fakeCache) DecrementStock(ctx context.Context, productID int64, by int) (int64, bool, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if _, ok := fc.inventory[productID]; !ok {
		return 0, false, nil
	}
	fc.inventory[productID] -= int64(by)
	return fc.inventory[productID], true, nil
}
