package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// Collection names of the document store.
const (
	collBatches        = "batches"
	collInventory      = "inventory"
	collFinishedGoods  = "finished_goods"
	collDailyCosts     = "daily_costs"
	collCustomers      = "customers"
	collSales          = "sales"
	collSuppliers      = "suppliers"
	collPurchaseOrders = "purchase_orders"
	collRecipes        = "recipes"
	collBudgets        = "budgets"
	collUserRoles      = "user_roles"
	collSettings       = "settings"
)

// MongoDBRepository is the document store of every operational collection.
// Documents are keyed by their business id stored as _id.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// Ping checks the connection.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Snapshot loads the five collections mirrored into the spreadsheet.
func (r *MongoDBRepository) Snapshot(ctx context.Context) (models.SyncPayload, error) {
	var out models.SyncPayload
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { out.Batches, err = r.ListBatches(gctx); return err })
	g.Go(func() (err error) { out.Inventory, err = r.ListInventory(gctx); return err })
	g.Go(func() (err error) { out.FinishedGoods, err = r.ListFinishedGoods(gctx); return err })
	g.Go(func() (err error) { out.DailyCosts, err = r.ListDailyCosts(gctx); return err })
	g.Go(func() (err error) { out.Customers, err = r.ListCustomers(gctx); return err })

	if err := g.Wait(); err != nil {
		return models.SyncPayload{}, err
	}
	return out, nil
}

func (r *MongoDBRepository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, fmt.Errorf("%s: %w", coll.Name(), models.ErrNotFound)
	}
	if err != nil {
		return out, fmt.Errorf("find one in %s: %w", coll.Name(), err)
	}
	return out, nil
}

func upsert(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	if id == "" {
		return fmt.Errorf("%s: document id must not be empty", coll.Name())
	}
	_, err := coll.ReplaceOne(ctx, byID(id), doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", coll.Name(), id, err)
	}
	return nil
}

func remove(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", coll.Name(), id, models.ErrNotFound)
	}
	return nil
}
