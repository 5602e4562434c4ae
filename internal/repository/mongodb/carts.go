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

// FindCart loads a cart by id.
func (r *Repository) FindCart(ctx context.Context, id string) (*models.Cart, error) {
	return r.findCart(ctx, bson.M{"_id": id}, models.ErrCartNotFound)
}

// FindCartByUser loads the open cart of the given identity.
func (r *Repository) FindCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	return r.findCart(ctx, bson.M{"user_id": userID}, models.ErrCartNotFound)
}

// FindCartByItem loads the cart containing the given line item.
func (r *Repository) FindCartByItem(ctx context.Context, itemID string) (*models.Cart, error) {
	return r.findCart(ctx, bson.M{"items.id": itemID}, models.ErrCartItemNotFound)
}

func (r *Repository) findCart(ctx context.Context, filter bson.M, notFound error) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection(collCarts).FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return &cart, nil
}

// SaveCart upserts the full cart document. Items are embedded, so totals
// and lines land in one write.
func (r *Repository) SaveCart(ctx context.Context, cart *models.Cart) error {
	_, err := r.collection(collCarts).ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return nil
}
