package mongodb

import (
	"context"
	"fmt"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// SaveDailySalesReport stores a snapshot taken by the reporting job.
func (r *Repository) SaveDailySalesReport(ctx context.Context, report models.DailySalesReport) error {
	if _, err := r.collection(collDailyReports).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("insert daily sales report: %w", err)
	}
	return nil
}
