package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/repository/memory"
)

type fakeExporter struct {
	rows []models.DailySalesReport
	err  error
}

func (e *fakeExporter) AppendReportRow(_ context.Context, report models.DailySalesReport) error {
	if e.err != nil {
		return e.err
	}
	e.rows = append(e.rows, report)
	return nil
}

func seedNotes(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.InsertSalesNote(ctx, &models.SalesNote{ID: "n1", Status: models.NotePending, Total: 10}))
	require.NoError(t, store.InsertSalesNote(ctx, &models.SalesNote{ID: "n2", Status: models.NoteProcessed, Total: 120}))
	require.NoError(t, store.InsertSalesNote(ctx, &models.SalesNote{ID: "n3", Status: models.NoteProcessed, Total: 80}))
	require.NoError(t, store.InsertSalesNote(ctx, &models.SalesNote{ID: "n4", Status: models.NoteCancelled, Total: 55}))
}

func TestSnapshotDailySales(t *testing.T) {
	store := memory.NewStore()
	seedNotes(t, store)
	exporter := &fakeExporter{}

	svc := NewService(store, store, exporter, nil)
	svc.now = func() time.Time {
		return time.Date(2025, time.June, 15, 22, 0, 0, 0, time.UTC)
	}

	report, err := svc.SnapshotDailySales(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), report.Date)
	assert.Equal(t, 4, report.TotalNotes)
	assert.Equal(t, 1, report.Pending)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Cancelled)
	assert.InDelta(t, 200, report.ProcessedAmount, 1e-9)

	require.Len(t, store.Reports(), 1)
	require.Len(t, exporter.rows, 1)
	assert.Equal(t, report.TotalNotes, exporter.rows[0].TotalNotes)
}

func TestSnapshotSurvivesExportFailure(t *testing.T) {
	store := memory.NewStore()
	seedNotes(t, store)

	svc := NewService(store, store, &fakeExporter{err: errors.New("sheet gone")}, nil)

	report, err := svc.SnapshotDailySales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalNotes)

	// The Mongo-side snapshot is the record; it is persisted regardless.
	assert.Len(t, store.Reports(), 1)
}

func TestSnapshotWithoutExporter(t *testing.T) {
	store := memory.NewStore()
	seedNotes(t, store)

	svc := NewService(store, store, nil, nil)

	_, err := svc.SnapshotDailySales(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.Reports(), 1)
}
