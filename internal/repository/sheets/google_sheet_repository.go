package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/jvaldezc/tienda-core/internal/config"
	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// Exporter appends daily sales report rows to an external spreadsheet for
// the back-office staff. The export is best-effort; the snapshot of record
// lives in MongoDB.
type Exporter interface {
	AppendReportRow(ctx context.Context, report models.DailySalesReport) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	reportRange   string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		reportRange:   cfg.ReportRange,
		logger:        logger,
	}, nil
}

// AppendReportRow appends one report as a row of the configured range.
func (e *GoogleSheetExporter) AppendReportRow(ctx context.Context, report models.DailySalesReport) error {
	values := []interface{}{
		report.Date.Format("2006-01-02"),
		report.TotalNotes,
		report.Pending,
		report.Processed,
		report.Cancelled,
		report.ProcessedAmount,
	}
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, e.reportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append report row into range %s: %w", e.reportRange, err)
	}

	e.logger.Debug("report row appended to sheet", zap.String("range", e.reportRange))
	return nil
}
