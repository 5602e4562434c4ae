package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NextSequence atomically increments and returns the counter stored under
// key (e.g. "NV-2026"). The upserted $inc makes the sequence safe under
// concurrent document creation, unlike deriving numbers from existing rows.
func (r *Repository) NextSequence(ctx context.Context, key string) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}

	err := r.collection(collCounters).
		FindOneAndUpdate(ctx,
			bson.M{"_id": key},
			bson.M{"$inc": bson.M{"seq": 1}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", key, err)
	}

	return counter.Seq, nil
}
