package notes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/service/stock"
)

// SalesStore is the sales note persistence contract.
type SalesStore interface {
	InsertSalesNote(ctx context.Context, note *models.SalesNote) error
	FindSalesNote(ctx context.Context, id string) (*models.SalesNote, error)
	ListSalesNotes(ctx context.Context, userID string) ([]models.SalesNote, error)
	UpdateSalesNote(ctx context.Context, note *models.SalesNote) error
	DeleteSalesNote(ctx context.Context, id string) error
	SalesNoteStats(ctx context.Context) (*models.SalesNoteStats, error)
}

// OrderSource validates the optional order link on a sales note.
type OrderSource interface {
	FindOrder(ctx context.Context, id string) (*models.Order, error)
}

// SalesDetailInput is one requested sales note line. The unit price comes
// from the author, not the catalog.
type SalesDetailInput struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

// CreateSalesNoteInput carries everything needed to stage a sales note.
type CreateSalesNoteInput struct {
	OrderID string
	Notes   string
	Details []SalesDetailInput
}

// SalesNotes describes the sales note operations the HTTP layer can perform.
type SalesNotes interface {
	Create(ctx context.Context, userID string, input CreateSalesNoteInput) (*models.SalesNote, error)
	Get(ctx context.Context, id string) (*models.SalesNote, error)
	List(ctx context.Context) ([]models.SalesNote, error)
	ListByUser(ctx context.Context, userID string) ([]models.SalesNote, error)
	Process(ctx context.Context, id string) (*models.SalesNote, error)
	Cancel(ctx context.Context, id string) (*models.SalesNote, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.SalesNoteStats, error)
}

// SalesService is the sales note state machine. Creation records intent
// without reserving anything; only the pending→processed transition debits
// stock, via the ledger.
type SalesService struct {
	store    SalesStore
	seq      Sequencer
	products ProductSource
	orders   OrderSource
	ledger   stock.Ledger
	logger   *zap.Logger
	now      func() time.Time
}

// NewSalesService wires a new sales note service.
func NewSalesService(store SalesStore, seq Sequencer, products ProductSource, orders OrderSource, ledger stock.Ledger, logger *zap.Logger) *SalesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesService{
		store:    store,
		seq:      seq,
		products: products,
		orders:   orders,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stages a pending sales note. Per-line availability is checked
// advisorily, the total is fixed from the supplied prices and the next
// yearly document number is allocated.
func (s *SalesService) Create(ctx context.Context, userID string, input CreateSalesNoteInput) (*models.SalesNote, error) {
	if len(input.Details) == 0 {
		return nil, models.NewValidationError("sales note must contain at least one detail")
	}

	if input.OrderID != "" {
		if _, err := s.orders.FindOrder(ctx, input.OrderID); err != nil {
			return nil, err
		}
	}

	total := 0.0
	details := make([]models.SalesNoteDetail, 0, len(input.Details))

	for _, in := range input.Details {
		if in.Quantity < 1 {
			return nil, models.NewValidationError("quantity for product %s must be at least 1, got %d", in.ProductID, in.Quantity)
		}
		if in.UnitPrice < 0 {
			return nil, models.NewValidationError("unit price for product %s must not be negative", in.ProductID)
		}

		product, err := s.products.FindProduct(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < in.Quantity {
			return nil, &models.InsufficientStockError{
				ProductID:   in.ProductID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   in.Quantity,
			}
		}

		subtotal := float64(in.Quantity) * in.UnitPrice
		total += subtotal
		details = append(details, models.SalesNoteDetail{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	number, err := nextNumber(ctx, s.seq, salesPrefix, s.now())
	if err != nil {
		return nil, err
	}

	note := &models.SalesNote{
		ID:        uuid.NewString(),
		Number:    number,
		UserID:    userID,
		OrderID:   input.OrderID,
		Details:   details,
		Total:     total,
		Status:    models.NotePending,
		Notes:     input.Notes,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.InsertSalesNote(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("sales note created",
		zap.String("note_id", note.ID),
		zap.String("number", note.Number),
		zap.Float64("total", note.Total))
	return note, nil
}

// Get loads a sales note by id.
func (s *SalesService) Get(ctx context.Context, id string) (*models.SalesNote, error) {
	return s.store.FindSalesNote(ctx, id)
}

// List returns all sales notes, newest first.
func (s *SalesService) List(ctx context.Context) ([]models.SalesNote, error) {
	return s.store.ListSalesNotes(ctx, "")
}

// ListByUser returns the given identity's sales notes, newest first.
func (s *SalesService) ListByUser(ctx context.Context, userID string) ([]models.SalesNote, error) {
	return s.store.ListSalesNotes(ctx, userID)
}

// Process moves a pending note to processed, debiting stock for every
// detail. The status is written only after every debit succeeded; if one
// fails, the already-taken debits are credited back and the note stays
// pending.
func (s *SalesService) Process(ctx context.Context, id string) (*models.SalesNote, error) {
	note, err := s.store.FindSalesNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(note.Status, models.NoteProcessed); err != nil {
		return nil, err
	}

	for i, detail := range note.Details {
		if _, err := s.ledger.Debit(ctx, detail.ProductID, detail.Quantity); err != nil {
			s.undoDebits(ctx, note, i)
			return nil, err
		}
	}

	note.Status = models.NoteProcessed
	if err := s.store.UpdateSalesNote(ctx, note); err != nil {
		s.undoDebits(ctx, note, len(note.Details))
		return nil, err
	}

	s.logger.Info("sales note processed", zap.String("note_id", note.ID), zap.String("number", note.Number))
	return note, nil
}

// Cancel moves a pending note to cancelled. No stock effect.
func (s *SalesService) Cancel(ctx context.Context, id string) (*models.SalesNote, error) {
	note, err := s.store.FindSalesNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(note.Status, models.NoteCancelled); err != nil {
		return nil, err
	}

	note.Status = models.NoteCancelled
	if err := s.store.UpdateSalesNote(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("sales note cancelled", zap.String("note_id", note.ID), zap.String("number", note.Number))
	return note, nil
}

// Delete removes a sales note; only pending notes are deletable.
func (s *SalesService) Delete(ctx context.Context, id string) error {
	note, err := s.store.FindSalesNote(ctx, id)
	if err != nil {
		return err
	}
	if note.Status != models.NotePending {
		return models.NewValidationError("only pending sales notes can be deleted, note is %s", note.Status)
	}

	return s.store.DeleteSalesNote(ctx, id)
}

// Stats returns counts and the processed amount grouped by status.
func (s *SalesService) Stats(ctx context.Context) (*models.SalesNoteStats, error) {
	return s.store.SalesNoteStats(ctx)
}

func (s *SalesService) undoDebits(ctx context.Context, note *models.SalesNote, debited int) {
	for _, detail := range note.Details[:debited] {
		if _, err := s.ledger.Credit(ctx, detail.ProductID, detail.Quantity); err != nil {
			s.logger.Error("failed to restore stock after aborted note processing",
				zap.String("note_id", note.ID),
				zap.String("product_id", detail.ProductID),
				zap.Int("quantity", detail.Quantity),
				zap.Error(err))
		}
	}
}
