package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// FindDiscountByCode loads an active discount by its code. Inactive and
// unknown codes are indistinguishable to callers.
func (r *Repository) FindDiscountByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.collection(collDiscounts).FindOne(ctx, bson.M{"code": code, "active": true}).Decode(&discount)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrDiscountInvalid
		}
		return nil, fmt.Errorf("find discount %s: %w", code, err)
	}
	return &discount, nil
}
