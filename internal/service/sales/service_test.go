package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

type store struct {
	sales     map[string]models.SalesRecord
	goods     map[string]models.FinishedGood
	customers map[string]models.Customer
	listErr   error
	findErr   error
	saveCust  error
}

func newStore() *store {
	return &store{
		sales: map[string]models.SalesRecord{},
		goods: map[string]models.FinishedGood{
			"FG-1": {ID: "FG-1", RecipeName: "Chili Chips", PackagingType: "POUCH", SellingPrice: 15},
			"FG-2": {ID: "FG-2", RecipeName: "Dried Oyster", PackagingType: "TIN", SellingPrice: 22.5},
		},
		customers: map[string]models.Customer{},
	}
}

func (s *store) ListSales(context.Context) ([]models.SalesRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.SalesRecord, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, sale)
	}
	return out, nil
}

func (s *store) GetSale(_ context.Context, id string) (models.SalesRecord, error) {
	sale, ok := s.sales[id]
	if !ok {
		return models.SalesRecord{}, models.ErrNotFound
	}
	return sale, nil
}

func (s *store) SaveSale(_ context.Context, sale models.SalesRecord) error {
	s.sales[sale.ID] = sale
	return nil
}

func (s *store) GetFinishedGood(_ context.Context, id string) (models.FinishedGood, error) {
	g, ok := s.goods[id]
	if !ok {
		return models.FinishedGood{}, models.ErrNotFound
	}
	return g, nil
}

func (s *store) GetCustomer(_ context.Context, id string) (models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return models.Customer{}, models.ErrNotFound
	}
	return c, nil
}

func (s *store) find(match func(models.Customer) bool) (models.Customer, error) {
	if s.findErr != nil {
		return models.Customer{}, s.findErr
	}
	for _, c := range s.customers {
		if match(c) {
			return c, nil
		}
	}
	return models.Customer{}, models.ErrNotFound
}

func (s *store) FindCustomerByEmail(_ context.Context, email string) (models.Customer, error) {
	return s.find(func(c models.Customer) bool { return c.Email == email })
}

func (s *store) FindCustomerByContact(_ context.Context, contact string) (models.Customer, error) {
	return s.find(func(c models.Customer) bool { return c.Contact == contact })
}

func (s *store) SaveCustomer(_ context.Context, c models.Customer) error {
	if s.saveCust != nil {
		return s.saveCust
	}
	s.customers[c.ID] = c
	return nil
}

func newTestService(st *store) *Service {
	svc := NewService(st, st, nil)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	svc.invoiceNo = func(int) int { return 4321 }
	return svc
}

func order(cart ...models.CartLine) models.OnlineOrderRequest {
	return models.OnlineOrderRequest{
		CustomerName:    "Aissatou",
		CustomerPhone:   "620112233",
		CustomerEmail:   "aissatou@example.com",
		CustomerAddress: "Kaloum, Conakry",
		Cart:            cart,
	}
}

func TestCreateSale(t *testing.T) {
	st := newStore()
	st.customers["c1"] = models.Customer{ID: "c1", Name: "Hotel Riviera"}
	svc := newTestService(st)

	sale, err := svc.Create(context.Background(), models.CreateSaleRequest{
		CustomerID:    "c1",
		Items:         []models.SaleItem{{RecipeName: "Chili Chips", Quantity: 4, UnitPrice: 15}, {RecipeName: "Dried Oyster", Quantity: 2, UnitPrice: 22.5}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)

	assert.Equal(t, "SALE-1700000000000", sale.ID)
	assert.Equal(t, "INV-4321", sale.InvoiceID)
	assert.Equal(t, "Hotel Riviera", sale.CustomerName)
	assert.Equal(t, models.SaleInvoiced, sale.Status)
	assert.InDelta(t, 105, sale.TotalAmount, 1e-9)
	assert.Contains(t, st.sales, sale.ID)
}

func TestCreateSaleUnknownCustomerAndQuotation(t *testing.T) {
	svc := newTestService(newStore())

	sale, err := svc.Create(context.Background(), models.CreateSaleRequest{
		CustomerID:    "nobody",
		Items:         []models.SaleItem{{Quantity: 1, UnitPrice: 10}},
		PaymentMethod: models.PaymentCOD,
		Status:        models.SaleQuotation,
	})
	require.NoError(t, err)

	assert.Equal(t, "Unknown", sale.CustomerName)
	assert.Equal(t, models.SaleQuotation, sale.Status)
}

func TestCreateSaleRejectsLaterStatus(t *testing.T) {
	svc := newTestService(newStore())

	_, err := svc.Create(context.Background(), models.CreateSaleRequest{
		CustomerID: "c1",
		Items:      []models.SaleItem{{Quantity: 1}},
		Status:     models.SalePaid,
	})

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOnlineOrderCreatesShopCustomer(t *testing.T) {
	st := newStore()
	svc := newTestService(st)

	invoice, err := svc.SubmitOnlineOrder(context.Background(), order(
		models.CartLine{FinishedGoodID: "FG-1", Quantity: 2},
		models.CartLine{FinishedGoodID: "FG-2", Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, "WEB-4321", invoice)
	sale := st.sales["ORDER-1700000000000"]
	assert.Equal(t, "cust-shop-1700000000000", sale.CustomerID)
	assert.Equal(t, models.SaleQuotation, sale.Status)
	assert.Equal(t, models.PaymentCOD, sale.PaymentMethod)
	assert.InDelta(t, 52.5, sale.TotalAmount, 1e-9)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "Chili Chips", sale.Items[0].RecipeName)

	c := st.customers["cust-shop-1700000000000"]
	assert.Equal(t, "B2C", c.Type)
	assert.Equal(t, "Kaloum, Conakry", c.Address)
}

func TestOnlineOrderLinksByEmailThenPhone(t *testing.T) {
	st := newStore()
	st.customers["c-mail"] = models.Customer{ID: "c-mail", Email: "aissatou@example.com", Type: "B2B", Address: "Dixinn"}
	st.customers["c-phone"] = models.Customer{ID: "c-phone", Contact: "620112233"}
	svc := newTestService(st)

	_, err := svc.SubmitOnlineOrder(context.Background(), order(models.CartLine{FinishedGoodID: "FG-1", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, "c-mail", st.sales["ORDER-1700000000000"].CustomerID)
	assert.Equal(t, "Dixinn", st.customers["c-mail"].Address)

	req := order(models.CartLine{FinishedGoodID: "FG-1", Quantity: 1})
	req.CustomerEmail = ""
	svc.now = func() time.Time { return time.UnixMilli(1700000001000) }
	_, err = svc.SubmitOnlineOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "c-phone", st.sales["ORDER-1700000001000"].CustomerID)
	assert.Equal(t, "B2C", st.customers["c-phone"].Type)
	assert.Equal(t, "Kaloum, Conakry", st.customers["c-phone"].Address)
}

func TestOnlineOrderFallsBackToGuest(t *testing.T) {
	st := newStore()
	st.saveCust = errors.New("permission denied")
	svc := newTestService(st)

	_, err := svc.SubmitOnlineOrder(context.Background(), order(models.CartLine{FinishedGoodID: "FG-1", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, "GUEST-1700000000000", st.sales["ORDER-1700000000000"].CustomerID)

	st.findErr = errors.New("timeout")
	svc.now = func() time.Time { return time.UnixMilli(1700000002000) }
	_, err = svc.SubmitOnlineOrder(context.Background(), order(models.CartLine{FinishedGoodID: "FG-1", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, Guest, st.sales["ORDER-1700000002000"].CustomerID)
}

func TestOnlineOrderUnknownProduct(t *testing.T) {
	st := newStore()
	svc := newTestService(st)

	_, err := svc.SubmitOnlineOrder(context.Background(), order(models.CartLine{FinishedGoodID: "FG-404", Quantity: 1}))

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, st.sales)
}

func TestAdvanceFollowsLifecycle(t *testing.T) {
	st := newStore()
	st.sales["s1"] = models.SalesRecord{ID: "s1", Status: models.SaleQuotation}
	svc := newTestService(st)
	ctx := context.Background()

	for _, status := range []models.SalesStatus{models.SaleInvoiced, models.SaleShipped, models.SalePaid} {
		sale, err := svc.Advance(ctx, "s1", status)
		require.NoError(t, err)
		assert.Equal(t, status, sale.Status)
	}

	_, err := svc.Advance(ctx, "s1", models.SaleInvoiced)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAdvanceCannotSkipSteps(t *testing.T) {
	st := newStore()
	st.sales["s1"] = models.SalesRecord{ID: "s1", Status: models.SaleQuotation}
	svc := newTestService(st)

	_, err := svc.Advance(context.Background(), "s1", models.SalePaid)

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, models.SaleQuotation, st.sales["s1"].Status)
}

func TestAdvanceFromTerminalStatus(t *testing.T) {
	st := newStore()
	st.sales["paid"] = models.SalesRecord{ID: "paid", Status: models.SalePaid}
	st.sales["gone"] = models.SalesRecord{ID: "gone", Status: models.SaleCancelled}
	svc := newTestService(st)
	ctx := context.Background()

	for _, id := range []string{"paid", "gone"} {
		_, err := svc.Advance(ctx, id, "")
		assert.ErrorIs(t, err, models.ErrInvalidTransition, id)
	}
	assert.Equal(t, models.SalePaid, st.sales["paid"].Status)
	assert.Equal(t, models.SaleCancelled, st.sales["gone"].Status)
}

func TestCancel(t *testing.T) {
	st := newStore()
	st.sales["q"] = models.SalesRecord{ID: "q", Status: models.SaleQuotation}
	st.sales["shipped"] = models.SalesRecord{ID: "shipped", Status: models.SaleShipped}
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, "q", "   ")
	assert.ErrorIs(t, err, ErrCancelReason)

	sale, err := svc.Cancel(ctx, "q", "customer changed mind")
	require.NoError(t, err)
	assert.Equal(t, models.SaleCancelled, sale.Status)
	assert.Equal(t, "customer changed mind", st.sales["q"].CancellationReason)

	_, err = svc.Cancel(ctx, "shipped", "late")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestListFallsBackToCache(t *testing.T) {
	st := newStore()
	st.sales["s1"] = models.SalesRecord{ID: "s1"}
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	st.listErr = errors.New("offline")
	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
