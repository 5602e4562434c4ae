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

// InsertSalesNote persists a new sales note.
func (r *Repository) InsertSalesNote(ctx context.Context, note *models.SalesNote) error {
	if _, err := r.collection(collSalesNotes).InsertOne(ctx, note); err != nil {
		return fmt.Errorf("insert sales note: %w", err)
	}
	return nil
}

// FindSalesNote loads a sales note by id.
func (r *Repository) FindSalesNote(ctx context.Context, id string) (*models.SalesNote, error) {
	var note models.SalesNote
	err := r.collection(collSalesNotes).FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find sales note %s: %w", id, err)
	}
	return &note, nil
}

// ListSalesNotes returns sales notes newest first, optionally limited to
// one user (empty userID lists all).
func (r *Repository) ListSalesNotes(ctx context.Context, userID string) ([]models.SalesNote, error) {
	notes := []models.SalesNote{}
	if err := r.listNotes(ctx, collSalesNotes, userID, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateSalesNote replaces the stored sales note document.
func (r *Repository) UpdateSalesNote(ctx context.Context, note *models.SalesNote) error {
	res, err := r.collection(collSalesNotes).ReplaceOne(ctx, bson.M{"_id": note.ID}, note)
	if err != nil {
		return fmt.Errorf("update sales note %s: %w", note.ID, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNoteNotFound
	}
	return nil
}

// DeleteSalesNote removes a sales note document.
func (r *Repository) DeleteSalesNote(ctx context.Context, id string) error {
	res, err := r.collection(collSalesNotes).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete sales note %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNoteNotFound
	}
	return nil
}

// SalesNoteStats aggregates note counts by status plus the processed
// amount, server-side.
func (r *Repository) SalesNoteStats(ctx context.Context) (*models.SalesNoteStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$total"},
		}}},
	}

	cursor, err := r.collection(collSalesNotes).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales note stats: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status models.NoteStatus `bson:"_id"`
		Count  int               `bson:"count"`
		Amount float64           `bson:"amount"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode sales note stats: %w", err)
	}

	stats := &models.SalesNoteStats{}
	for _, g := range groups {
		stats.Total += g.Count
		switch g.Status {
		case models.NotePending:
			stats.Pending = g.Count
		case models.NoteProcessed:
			stats.Processed = g.Count
			stats.ProcessedAmount = g.Amount
		case models.NoteCancelled:
			stats.Cancelled = g.Count
		}
	}
	return stats, nil
}

// InsertReceivingNote persists a new receiving note.
func (r *Repository) InsertReceivingNote(ctx context.Context, note *models.ReceivingNote) error {
	if _, err := r.collection(collReceivingNotes).InsertOne(ctx, note); err != nil {
		return fmt.Errorf("insert receiving note: %w", err)
	}
	return nil
}

// FindReceivingNote loads a receiving note by id.
func (r *Repository) FindReceivingNote(ctx context.Context, id string) (*models.ReceivingNote, error) {
	var note models.ReceivingNote
	err := r.collection(collReceivingNotes).FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find receiving note %s: %w", id, err)
	}
	return &note, nil
}

// ListReceivingNotes returns receiving notes newest first, optionally
// limited to one user (empty userID lists all).
func (r *Repository) ListReceivingNotes(ctx context.Context, userID string) ([]models.ReceivingNote, error) {
	notes := []models.ReceivingNote{}
	if err := r.listNotes(ctx, collReceivingNotes, userID, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateReceivingNote replaces the stored receiving note document.
func (r *Repository) UpdateReceivingNote(ctx context.Context, note *models.ReceivingNote) error {
	res, err := r.collection(collReceivingNotes).ReplaceOne(ctx, bson.M{"_id": note.ID}, note)
	if err != nil {
		return fmt.Errorf("update receiving note %s: %w", note.ID, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNoteNotFound
	}
	return nil
}

func (r *Repository) listNotes(ctx context.Context, coll string, userID string, out any) error {
	query := bson.M{}
	if userID != "" {
		query["user_id"] = userID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection(coll).Find(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("list %s: %w", coll, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll, err)
	}
	return nil
}
