package service

import (
	"context"
	"testing"
	"time"

	"ecom-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentService(fs *fakeStore, fp *fakePublisher, fc PayCache) *PaymentService {
	return NewPaymentService(fs, fp, fc, 5*time.Second, "visa")
}

func seedPayFixture(fs *fakeStore) (*models.Product, *models.CartEntry) {
	product := fs.addProduct(models.Product{
		UserID:   77, // seller
		Name:     "Air Zoom",
		Price:    100,
		Discount: 0,
		Quantity: 5,
		Status:   true,
	})
	entry := fs.addCartEntry(models.CartEntry{UserID: 42, ProductID: product.ID, Quantity: 2})
	fs.addProfile(models.Profile{UserID: 42, Address: "12 Main St", City: "Lagos", Country: "Nigeria"})
	return product, entry
}

func TestPaySuccess(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	product, entry := seedPayFixture(fs)

	ps := newPaymentService(fs, fp, newFakeCache())

	resp, err := ps.Pay(ctx, entry.ID, 42, &PayRequest{Method: "visa"})
	require.NoError(t, err)

	// the charge is the unit price, not price times cart quantity
	assert.Equal(t, float64(100), resp.Amount)
	assert.Equal(t, float64(100), resp.UnitPrice)
	require.NotNil(t, resp.ShipmentID)

	// cart entry is gone
	_, ok := fs.cartEntries[entry.ID]
	assert.False(t, ok)

	// quantity decremented by exactly 1, not by the cart quantity
	assert.Equal(t, 4, fs.products[product.ID].Quantity)

	// exactly one payment
	require.Len(t, fs.payments, 1)
	payment := fs.payments[resp.PaymentID]
	require.NotNil(t, payment)
	assert.Equal(t, int64(42), payment.UserID)
	assert.Equal(t, product.ID, payment.ProductID)

	// one pending shipment bound to the buyer's profile address
	shipment := fs.shipments[*resp.ShipmentID]
	require.NotNil(t, shipment)
	assert.Equal(t, models.ShipmentStatusPending, shipment.Status)
	assert.Equal(t, "12 Main St", shipment.Address)
	assert.Equal(t, "Lagos", shipment.City)
	assert.Equal(t, "Nigeria", shipment.Country)
	assert.Equal(t, resp.PaymentID, shipment.PaymentID)

	// events for the notification worker
	require.Len(t, fp.paymentCompleted, 1)
	assert.Equal(t, int64(42), fp.paymentCompleted[0].BuyerID)
	assert.Equal(t, int64(77), fp.paymentCompleted[0].SellerID)
	assert.Equal(t, "Air Zoom", fp.paymentCompleted[0].ProductName)
	require.Len(t, fp.shipmentCreated, 1)
}

func TestPayWrongUserNoMutation(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	product, entry := seedPayFixture(fs)

	ps := newPaymentService(fs, fp, nil)

	resp, err := ps.Pay(ctx, entry.ID, 999, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, resp)

	// nothing moved
	assert.Contains(t, fs.cartEntries, entry.ID)
	assert.Equal(t, 5, fs.products[product.ID].Quantity)
	assert.Empty(t, fs.payments)
	assert.Empty(t, fs.shipments)
	assert.Empty(t, fp.paymentCompleted)
}

func TestPayTwiceSecondFailsCleanly(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	_, entry := seedPayFixture(fs)

	ps := newPaymentService(fs, fp, nil)

	_, err := ps.Pay(ctx, entry.ID, 42, nil)
	require.NoError(t, err)

	_, err = ps.Pay(ctx, entry.ID, 42, nil)
	require.ErrorIs(t, err, ErrNotFound)

	// still exactly one payment
	assert.Len(t, fs.payments, 1)
}

func TestPayInvalidMethodNoSideEffects(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	product, entry := seedPayFixture(fs)

	ps := newPaymentService(fs, fp, nil)

	_, err := ps.Pay(ctx, entry.ID, 42, &PayRequest{Method: "bitcoin"})
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)

	assert.Contains(t, fs.cartEntries, entry.ID)
	assert.Equal(t, 5, fs.products[product.ID].Quantity)
	assert.Empty(t, fs.payments)
}

func TestPayDefaultsToVisa(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	_, entry := seedPayFixture(fs)

	ps := newPaymentService(fs, fp, nil)

	resp, err := ps.Pay(ctx, entry.ID, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, fs.methods["visa"].ID, fs.payments[resp.PaymentID].MethodID)
}

func TestPayProfileIncompleteKeepsPayment(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	product, entry := seedPayFixture(fs)
	fs.addProfile(models.Profile{UserID: 42, Address: "", City: "Lagos", Country: "Nigeria"})

	ps := newPaymentService(fs, fp, nil)

	resp, err := ps.Pay(ctx, entry.ID, 42, nil)
	require.ErrorIs(t, err, ErrProfileIncomplete)

	// the payment is durable and identifiable even though shipping failed
	require.NotNil(t, resp)
	assert.NotZero(t, resp.PaymentID)
	assert.Nil(t, resp.ShipmentID)
	assert.Len(t, fs.payments, 1)
	assert.Empty(t, fs.shipments)
	assert.Equal(t, 4, fs.products[product.ID].Quantity)

	// buyer and seller still get notified about the payment
	assert.Len(t, fp.paymentCompleted, 1)
	assert.Empty(t, fp.shipmentCreated)
}

func TestPayQuantityZeroGoesNegative(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	product := fs.addProduct(models.Product{UserID: 77, Name: "Last One", Price: 50, Quantity: 0})
	entry := fs.addCartEntry(models.CartEntry{UserID: 42, ProductID: product.ID})
	fs.addProfile(models.Profile{UserID: 42, Address: "12 Main St", City: "Lagos", Country: "Nigeria"})

	ps := newPaymentService(fs, fp, nil)

	_, err := ps.Pay(ctx, entry.ID, 42, nil)
	require.NoError(t, err)

	// no floor check: the counter goes negative and the oversell is counted
	assert.Equal(t, -1, fs.products[product.ID].Quantity)
}

func TestPayLockHeldRejectsConcurrentAttempt(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{}
	_, entry := seedPayFixture(fs)

	fc := newFakeCache()
	_, err := fc.AcquirePayLock(ctx, entry.ID, time.Minute)
	require.NoError(t, err)

	ps := newPaymentService(fs, fp, fc)

	_, err = ps.Pay(ctx, entry.ID, 42, nil)
	require.ErrorIs(t, err, ErrPaymentInProgress)
	assert.Empty(t, fs.payments)
}

func TestPayPublishFailureDoesNotFailPayment(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fp := &fakePublisher{err: assert.AnError}
	_, entry := seedPayFixture(fs)

	ps := newPaymentService(fs, fp, nil)

	resp, err := ps.Pay(ctx, entry.ID, 42, nil)
	require.NoError(t, err)
	assert.NotZero(t, resp.PaymentID)
	assert.Len(t, fs.payments, 1)
}

func TestInitiateShipmentIdempotent(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.addProfile(models.Profile{UserID: 42, Address: "12 Main St", City: "Lagos", Country: "Nigeria"})

	ps := newPaymentService(fs, &fakePublisher{}, nil)

	payment := &models.Payment{ID: 900, UserID: 42, ProductID: 5}
	first, err := ps.initiateShipment(ctx, payment)
	require.NoError(t, err)

	second, err := ps.initiateShipment(ctx, payment)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, fs.shipments, 1)
}
