package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// InsertOrder persists a new order with its embedded items.
func (r *Repository) InsertOrder(ctx context.Context, order *models.Order) error {
	if _, err := r.collection(collOrders).InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// FindOrder loads an order by id.
func (r *Repository) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.collection(collOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &order, nil
}

// ListOrders returns one page of orders matching the filter, newest first,
// together with the total match count.
func (r *Repository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	coll := r.collection(collOrders)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	return orders, total, nil
}

// UpdateOrder replaces the stored order document.
func (r *Repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	res, err := r.collection(collOrders).ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return fmt.Errorf("update order %s: %w", order.ID, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// DeleteOrder removes the order document.
func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	res, err := r.collection(collOrders).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}
