package reporting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/repository/sheets"
)

// StatsSource supplies the sales note aggregate.
type StatsSource interface {
	SalesNoteStats(ctx context.Context) (*models.SalesNoteStats, error)
}

// SnapshotStore persists daily report snapshots.
type SnapshotStore interface {
	SaveDailySalesReport(ctx context.Context, report models.DailySalesReport) error
}

// Service materializes the daily sales report. The MongoDB snapshot is the
// record; the sheet export is best-effort and may be absent.
type Service struct {
	stats     StatsSource
	snapshots SnapshotStore
	exporter  sheets.Exporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new reporting service instance. exporter may be nil.
func NewService(stats StatsSource, snapshots SnapshotStore, exporter sheets.Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stats:     stats,
		snapshots: snapshots,
		exporter:  exporter,
		logger:    logger,
		now:       time.Now,
	}
}

// SnapshotDailySales aggregates the current sales note statistics, stores
// them as today's report and exports the row when a sheet is configured.
func (s *Service) SnapshotDailySales(ctx context.Context) (*models.DailySalesReport, error) {
	stats, err := s.stats.SalesNoteStats(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := models.DailySalesReport{
		Date:            time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		TotalNotes:      stats.Total,
		Pending:         stats.Pending,
		Processed:       stats.Processed,
		Cancelled:       stats.Cancelled,
		ProcessedAmount: stats.ProcessedAmount,
		CreatedAt:       now,
	}

	if err := s.snapshots.SaveDailySalesReport(ctx, report); err != nil {
		return nil, err
	}

	if s.exporter != nil {
		if err := s.exporter.AppendReportRow(ctx, report); err != nil {
			s.logger.Warn("sheet export failed, snapshot is persisted", zap.Error(err))
		}
	}

	s.logger.Info("daily sales report snapshot taken",
		zap.Int("total_notes", report.TotalNotes),
		zap.Float64("processed_amount", report.ProcessedAmount))
	return &report, nil
}
