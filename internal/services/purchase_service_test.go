package services_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/adeyemi/marketplace-backend/internal/repository/memory"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFee = int64(100)

type purchaseFixture struct {
	store  *memory.Store
	svc    *services.PurchaseService
	buyer  models.User
	seller models.User
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()
	store := memory.NewStore()
	svc := services.NewPurchaseService(
		store.Users(), store.Products(), store.Wallets(), store.Transactions(),
		store.AuditLogs(), nil, testFee, slog.Default(),
	)
	buyer := mustUser(t, store, "Bola", "bola@example.com")
	seller := mustUser(t, store, "Seyi", "seyi@example.com")
	return &purchaseFixture{store: store, svc: svc, buyer: buyer, seller: seller}
}

func mustUser(t *testing.T, store *memory.Store, name, email string) models.User {
	t.Helper()
	u, err := store.Users().Create(context.Background(), models.User{
		ID: uuid.NewString(), Name: name, Email: email, Verified: true,
	})
	require.NoError(t, err)
	return u
}

func mustProduct(t *testing.T, store *memory.Store, ownerID string, price int64) models.Product {
	t.Helper()
	p, err := store.Products().Create(context.Background(), models.Product{
		Title: "Widget", Price: price, Picture: "widget.png", URL: "https://example.com/widget",
		CreatedBy: ownerID,
	})
	require.NoError(t, err)
	return p
}

func (f *purchaseFixture) fund(t *testing.T, userID string, amount int64) {
	t.Helper()
	_, err := f.store.Wallets().Adjust(context.Background(), userID, amount)
	require.NoError(t, err)
}

func (f *purchaseFixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	w, err := f.store.Wallets().Get(context.Background(), userID)
	require.NoError(t, err)
	return w.Amount
}

func TestPurchaseSuccess(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 5000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	res, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2900), res.NewBalance)
	assert.Equal(t, int64(2900), f.balance(t, f.buyer.ID))
	assert.Equal(t, int64(2000), f.balance(t, f.seller.ID))

	tx := res.Transaction
	assert.Equal(t, p.ID, tx.ProductID)
	assert.Equal(t, f.buyer.ID, tx.BuyerID)
	assert.Equal(t, f.seller.ID, tx.SellerID)
	assert.Equal(t, int64(2000), tx.ProductPrice)
	assert.Equal(t, testFee, tx.PlatformFee)
	assert.Equal(t, int64(2100), tx.TotalAmount)

	got, err := f.store.Transactions().GetByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.TotalAmount, got.TotalAmount)
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 1000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindInsufficientFunds, services.KindOf(err))
	assert.Contains(t, err.Error(), "2100")

	assert.Equal(t, int64(1000), f.balance(t, f.buyer.ID))
	assert.Equal(t, int64(0), f.balance(t, f.seller.ID))
	assertNoLedgerEntries(t, f)
}

func TestPurchaseSelfPurchase(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.seller.ID, 10000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	_, err := f.svc.Purchase(context.Background(), f.seller.ID, p.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindSelfPurchase, services.KindOf(err))
	assert.Equal(t, int64(10000), f.balance(t, f.seller.ID))
	assertNoLedgerEntries(t, f)
}

func TestPurchaseProductNotFound(t *testing.T) {
	f := newPurchaseFixture(t)
	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
}

func TestPurchaseInvalidProductID(t *testing.T) {
	f := newPurchaseFixture(t)
	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, services.KindValidation, services.KindOf(err))
}

func TestPurchaseRollsBackWhenSellerCreditFails(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 5000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	f.store.AdjustErr = func(userID string, delta int64) error {
		if userID == f.seller.ID && delta > 0 {
			return errors.New("simulated write conflict")
		}
		return nil
	}

	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindTransferFailed, services.KindOf(err))

	// compensating credit restored the buyer; sum invariant holds
	assert.Equal(t, int64(5000), f.balance(t, f.buyer.ID))
	assert.Equal(t, int64(0), f.balance(t, f.seller.ID))
	assertNoLedgerEntries(t, f)
}

func TestPurchaseRollsBackWhenLedgerWriteFails(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 5000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	f.store.LedgerErr = func(models.Transaction) error {
		return errors.New("simulated insert failure")
	}

	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindPersistence, services.KindOf(err))

	assert.Equal(t, int64(5000), f.balance(t, f.buyer.ID))
	assert.Equal(t, int64(0), f.balance(t, f.seller.ID))
}

func TestPurchaseSurfacesInconsistencyWhenCompensationFails(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 5000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	// seller credit fails, and so does the buyer refund
	f.store.AdjustErr = func(userID string, delta int64) error {
		if delta > 0 {
			return errors.New("simulated outage")
		}
		return nil
	}

	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindInconsistency, services.KindOf(err))
}

func TestPurchaseFailureKeepsBalanceSumInvariant(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 3000)
	f.fund(t, f.seller.ID, 700)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	cases := []struct {
		name  string
		setup func()
	}{
		{"insufficient funds", func() {
			big := mustProduct(t, f.store, f.seller.ID, 900000)
			_, err := f.svc.Purchase(context.Background(), f.buyer.ID, big.ID)
			require.Error(t, err)
		}},
		{"credit failure", func() {
			f.store.AdjustErr = func(userID string, delta int64) error {
				if userID == f.seller.ID && delta > 0 {
					return errors.New("boom")
				}
				return nil
			}
			defer func() { f.store.AdjustErr = nil }()
			_, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
			require.Error(t, err)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.balance(t, f.buyer.ID) + f.balance(t, f.seller.ID)
			tc.setup()
			after := f.balance(t, f.buyer.ID) + f.balance(t, f.seller.ID)
			assert.Equal(t, before, after)
		})
	}
}

func TestConcurrentPurchasesAgainstOneSeller(t *testing.T) {
	f := newPurchaseFixture(t)

	const n = 8
	var wantSellerTotal int64
	buyers := make([]models.User, n)
	products := make([]models.Product, n)
	for i := 0; i < n; i++ {
		buyers[i] = mustUser(t, f.store, "Buyer", uuid.NewString()+"@example.com")
		f.fund(t, buyers[i].ID, 10000)
		price := int64(1000 + 100*i)
		products[i] = mustProduct(t, f.store, f.seller.ID, price)
		wantSellerTotal += price
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Purchase(context.Background(), buyers[i].ID, products[i].ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "purchase %d", i)
	}
	assert.Equal(t, wantSellerTotal, f.balance(t, f.seller.ID))
	for i := 0; i < n; i++ {
		want := 10000 - products[i].Price - testFee
		assert.Equal(t, want, f.balance(t, buyers[i].ID))
	}
}

func TestPurchaseWritesCommitAuditRow(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 5000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	res, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
	require.NoError(t, err)

	logs, err := f.store.AuditLogs().ListByEntity(context.Background(), "purchase", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "committed", logs[0].Action)
	require.NotNil(t, logs[0].EntityID)
	assert.Equal(t, res.Transaction.ID, *logs[0].EntityID)
	assert.Equal(t, int64(2100), logs[0].Details["total"])
}

func TestPurchaseAuditsCompensationFailure(t *testing.T) {
	f := newPurchaseFixture(t)
	f.fund(t, f.buyer.ID, 5000)
	p := mustProduct(t, f.store, f.seller.ID, 2000)

	f.store.AdjustErr = func(_ string, delta int64) error {
		if delta > 0 {
			return errors.New("simulated outage")
		}
		return nil
	}

	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, p.ID)
	require.Error(t, err)
	require.Equal(t, services.KindInconsistency, services.KindOf(err))

	logs, err := f.store.AuditLogs().ListByEntity(context.Background(), "purchase", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "compensation_failed", logs[0].Action)
	require.NotNil(t, logs[0].EntityID)
	assert.Equal(t, f.buyer.ID, *logs[0].EntityID)
}

func assertNoLedgerEntries(t *testing.T, f *purchaseFixture) {
	t.Helper()
	for _, id := range []string{f.buyer.ID, f.seller.ID} {
		txs, err := f.store.Transactions().ListByUser(context.Background(), id, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, txs)
	}
}
