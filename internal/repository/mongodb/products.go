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

// FindProduct loads a product by id.
func (r *Repository) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.collection(collProducts).FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	return &product, nil
}

// DebitStock atomically decrements a product's stock by qty and returns the
// new value. The guard `stock >= qty` is part of the same update document,
// so two concurrent debits can never drive the counter negative.
func (r *Repository) DebitStock(ctx context.Context, productID string, qty int) (int, error) {
	filter := bson.M{"_id": productID, "stock": bson.M{"$gte": qty}}
	update := bson.M{"$inc": bson.M{"stock": -qty}}

	var product models.Product
	err := r.collection(collProducts).
		FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&product)
	if err == nil {
		return product.Stock, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("debit stock for %s: %w", productID, err)
	}

	// The guarded update matched nothing: either the product is missing or
	// its stock is below qty. A second read distinguishes the two.
	current, findErr := r.FindProduct(ctx, productID)
	if findErr != nil {
		return 0, findErr
	}
	return 0, &models.InsufficientStockError{
		ProductID:   productID,
		ProductName: current.Name,
		Available:   current.Stock,
		Requested:   qty,
	}
}

// CreditStock atomically increments a product's stock by qty and returns
// the new value.
func (r *Repository) CreditStock(ctx context.Context, productID string, qty int) (int, error) {
	update := bson.M{"$inc": bson.M{"stock": qty}}

	var product models.Product
	err := r.collection(collProducts).
		FindOneAndUpdate(ctx, bson.M{"_id": productID}, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, models.ErrProductNotFound
		}
		return 0, fmt.Errorf("credit stock for %s: %w", productID, err)
	}
	return product.Stock, nil
}
