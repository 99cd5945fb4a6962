package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

const ratesSettingID = "rates"

// ListCustomers returns every CRM contact.
func (r *MongoDBRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return findAll[models.Customer](ctx, r.coll(collCustomers), nil)
}

// GetCustomer loads one contact.
func (r *MongoDBRepository) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	return findOne[models.Customer](ctx, r.coll(collCustomers), byID(id))
}

// FindCustomerByEmail returns the first contact with the given email.
func (r *MongoDBRepository) FindCustomerByEmail(ctx context.Context, email string) (models.Customer, error) {
	return findOne[models.Customer](ctx, r.coll(collCustomers), bson.M{"email": email})
}

// FindCustomerByContact returns the first contact with the given phone number.
func (r *MongoDBRepository) FindCustomerByContact(ctx context.Context, contact string) (models.Customer, error) {
	return findOne[models.Customer](ctx, r.coll(collCustomers), bson.M{"contact": contact})
}

// SaveCustomer creates or replaces a contact.
func (r *MongoDBRepository) SaveCustomer(ctx context.Context, customer models.Customer) error {
	return upsert(ctx, r.coll(collCustomers), customer.ID, customer)
}

// ListSales returns sales documents, newest first.
func (r *MongoDBRepository) ListSales(ctx context.Context) ([]models.SalesRecord, error) {
	return findAll[models.SalesRecord](ctx, r.coll(collSales), nil, newestFirst("dateCreated"))
}

// GetSale loads one sales document.
func (r *MongoDBRepository) GetSale(ctx context.Context, id string) (models.SalesRecord, error) {
	return findOne[models.SalesRecord](ctx, r.coll(collSales), byID(id))
}

// SaveSale creates or replaces a sales document.
func (r *MongoDBRepository) SaveSale(ctx context.Context, sale models.SalesRecord) error {
	return upsert(ctx, r.coll(collSales), sale.ID, sale)
}

// ListDailyCosts returns cost entries, most recent date first.
func (r *MongoDBRepository) ListDailyCosts(ctx context.Context) ([]models.DailyCostMetric, error) {
	return findAll[models.DailyCostMetric](ctx, r.coll(collDailyCosts), nil, newestFirst("date"))
}

// GetDailyCost loads one cost entry.
func (r *MongoDBRepository) GetDailyCost(ctx context.Context, id string) (models.DailyCostMetric, error) {
	return findOne[models.DailyCostMetric](ctx, r.coll(collDailyCosts), byID(id))
}

// SaveDailyCost creates or replaces a cost entry.
func (r *MongoDBRepository) SaveDailyCost(ctx context.Context, cost models.DailyCostMetric) error {
	return upsert(ctx, r.coll(collDailyCosts), cost.ID, cost)
}

// GetBudget loads the budget of a month (YYYY-MM).
func (r *MongoDBRepository) GetBudget(ctx context.Context, month string) (models.Budget, error) {
	return findOne[models.Budget](ctx, r.coll(collBudgets), byID(month))
}

// SaveBudget stores the budget under its month.
func (r *MongoDBRepository) SaveBudget(ctx context.Context, budget models.Budget) error {
	return upsert(ctx, r.coll(collBudgets), budget.Month, budget)
}

// GetUserRole loads the dashboard role of a user.
func (r *MongoDBRepository) GetUserRole(ctx context.Context, uid string) (models.UserRole, error) {
	return findOne[models.UserRole](ctx, r.coll(collUserRoles), byID(uid))
}

type ratesDocument struct {
	ID           string `bson:"_id"`
	models.Rates `bson:",inline"`
}

// LoadRates reads the persisted costing rates. ok is false when none were saved.
func (r *MongoDBRepository) LoadRates(ctx context.Context) (rates models.Rates, ok bool, err error) {
	doc, err := findOne[ratesDocument](ctx, r.coll(collSettings), byID(ratesSettingID))
	if errors.Is(err, models.ErrNotFound) {
		return models.Rates{}, false, nil
	}
	if err != nil {
		return models.Rates{}, false, fmt.Errorf("load rates: %w", err)
	}
	return doc.Rates, true, nil
}

// SaveRates persists the costing rates.
func (r *MongoDBRepository) SaveRates(ctx context.Context, rates models.Rates) error {
	return upsert(ctx, r.coll(collSettings), ratesSettingID, ratesDocument{ID: ratesSettingID, Rates: rates})
}
