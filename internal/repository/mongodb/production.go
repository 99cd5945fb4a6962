package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// GetBatch loads one batch.
func (r *MongoDBRepository) GetBatch(ctx context.Context, id string) (models.Batch, error) {
	return findOne[models.Batch](ctx, r.coll(collBatches), byID(id))
}

// ListBatches returns all batches, newest intake first.
func (r *MongoDBRepository) ListBatches(ctx context.Context) ([]models.Batch, error) {
	return findAll[models.Batch](ctx, r.coll(collBatches), nil, newestFirst("dateReceived"))
}

// ListBatchesByStatus returns the batches in one lifecycle state.
func (r *MongoDBRepository) ListBatchesByStatus(ctx context.Context, status models.BatchStatus) ([]models.Batch, error) {
	return findAll[models.Batch](ctx, r.coll(collBatches), bson.M{"status": status}, newestFirst("dateReceived"))
}

// SaveBatch replaces the whole batch document.
func (r *MongoDBRepository) SaveBatch(ctx context.Context, batch models.Batch) error {
	return upsert(ctx, r.coll(collBatches), batch.ID, batch)
}

// GetRecipe loads one recipe.
func (r *MongoDBRepository) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	return findOne[models.Recipe](ctx, r.coll(collRecipes), byID(id))
}

// FindRecipeByName loads the first recipe stored under name.
func (r *MongoDBRepository) FindRecipeByName(ctx context.Context, name string) (models.Recipe, error) {
	return findOne[models.Recipe](ctx, r.coll(collRecipes), bson.M{"name": name})
}

// ListRecipes returns every recipe.
func (r *MongoDBRepository) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	return findAll[models.Recipe](ctx, r.coll(collRecipes), nil)
}

// SaveRecipe creates or replaces a recipe.
func (r *MongoDBRepository) SaveRecipe(ctx context.Context, recipe models.Recipe) error {
	return upsert(ctx, r.coll(collRecipes), recipe.ID, recipe)
}

// DeleteRecipe removes a recipe.
func (r *MongoDBRepository) DeleteRecipe(ctx context.Context, id string) error {
	return remove(ctx, r.coll(collRecipes), id)
}

// ListInventory returns every stocked item.
func (r *MongoDBRepository) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	return findAll[models.InventoryItem](ctx, r.coll(collInventory), nil)
}

// GetInventoryItem loads one stocked item.
func (r *MongoDBRepository) GetInventoryItem(ctx context.Context, id string) (models.InventoryItem, error) {
	return findOne[models.InventoryItem](ctx, r.coll(collInventory), byID(id))
}

// SaveInventoryItem creates or replaces a stocked item.
func (r *MongoDBRepository) SaveInventoryItem(ctx context.Context, item models.InventoryItem) error {
	return upsert(ctx, r.coll(collInventory), item.ID, item)
}

// DeleteInventoryItem removes a stocked item.
func (r *MongoDBRepository) DeleteInventoryItem(ctx context.Context, id string) error {
	return remove(ctx, r.coll(collInventory), id)
}

// ListFinishedGoods returns packed stock, most recently packed first.
func (r *MongoDBRepository) ListFinishedGoods(ctx context.Context) ([]models.FinishedGood, error) {
	return findAll[models.FinishedGood](ctx, r.coll(collFinishedGoods), nil, newestFirst("datePacked"))
}

// GetFinishedGood loads one packed stock entry.
func (r *MongoDBRepository) GetFinishedGood(ctx context.Context, id string) (models.FinishedGood, error) {
	return findOne[models.FinishedGood](ctx, r.coll(collFinishedGoods), byID(id))
}

// SaveFinishedGood creates or replaces a packed stock entry.
func (r *MongoDBRepository) SaveFinishedGood(ctx context.Context, good models.FinishedGood) error {
	return upsert(ctx, r.coll(collFinishedGoods), good.ID, good)
}

// ListSuppliers returns every supplier.
func (r *MongoDBRepository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return findAll[models.Supplier](ctx, r.coll(collSuppliers), nil)
}

// SaveSupplier creates or replaces a supplier.
func (r *MongoDBRepository) SaveSupplier(ctx context.Context, supplier models.Supplier) error {
	return upsert(ctx, r.coll(collSuppliers), supplier.ID, supplier)
}

// ListPurchaseOrders returns purchase orders, newest first.
func (r *MongoDBRepository) ListPurchaseOrders(ctx context.Context) ([]models.PurchaseOrder, error) {
	return findAll[models.PurchaseOrder](ctx, r.coll(collPurchaseOrders), nil, newestFirst("dateOrdered"))
}

// GetPurchaseOrder loads one purchase order.
func (r *MongoDBRepository) GetPurchaseOrder(ctx context.Context, id string) (models.PurchaseOrder, error) {
	return findOne[models.PurchaseOrder](ctx, r.coll(collPurchaseOrders), byID(id))
}

// SavePurchaseOrder creates or replaces a purchase order.
func (r *MongoDBRepository) SavePurchaseOrder(ctx context.Context, po models.PurchaseOrder) error {
	return upsert(ctx, r.coll(collPurchaseOrders), po.ID, po)
}
