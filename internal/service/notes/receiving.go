package notes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/service/stock"
)

// ReceivingStore is the receiving note persistence contract.
type ReceivingStore interface {
	InsertReceivingNote(ctx context.Context, note *models.ReceivingNote) error
	FindReceivingNote(ctx context.Context, id string) (*models.ReceivingNote, error)
	ListReceivingNotes(ctx context.Context, userID string) ([]models.ReceivingNote, error)
	UpdateReceivingNote(ctx context.Context, note *models.ReceivingNote) error
}

// ReceivingDetailInput is one requested goods-receipt line.
type ReceivingDetailInput struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	Remark    string
}

// CreateReceivingNoteInput carries everything needed to stage a receiving note.
type CreateReceivingNoteInput struct {
	Supplier string
	Notes    string
	Details  []ReceivingDetailInput
}

// ReceivingNotes describes the receiving note operations the HTTP layer
// can perform. Unlike sales notes there is no delete path: once recorded a
// receipt only ever changes status.
type ReceivingNotes interface {
	Create(ctx context.Context, userID string, input CreateReceivingNoteInput) (*models.ReceivingNote, error)
	Get(ctx context.Context, id string) (*models.ReceivingNote, error)
	List(ctx context.Context) ([]models.ReceivingNote, error)
	ListByUser(ctx context.Context, userID string) ([]models.ReceivingNote, error)
	Process(ctx context.Context, id string) (*models.ReceivingNote, error)
	Cancel(ctx context.Context, id string) (*models.ReceivingNote, error)
}

// ReceivingService is the receiving note state machine: the mirror of the
// sales note machine with the stock effect reversed. Processing credits
// stock, which cannot fail on a floor condition.
type ReceivingService struct {
	store    ReceivingStore
	seq      Sequencer
	products ProductSource
	ledger   stock.Ledger
	logger   *zap.Logger
	now      func() time.Time
}

// NewReceivingService wires a new receiving note service.
func NewReceivingService(store ReceivingStore, seq Sequencer, products ProductSource, ledger stock.Ledger, logger *zap.Logger) *ReceivingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingService{
		store:    store,
		seq:      seq,
		products: products,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stages a pending receiving note. Products only need to exist;
// there is no availability concern on inbound stock.
func (s *ReceivingService) Create(ctx context.Context, userID string, input CreateReceivingNoteInput) (*models.ReceivingNote, error) {
	if input.Supplier == "" {
		return nil, models.NewValidationError("supplier must be provided")
	}
	if len(input.Details) == 0 {
		return nil, models.NewValidationError("receiving note must contain at least one detail")
	}

	total := 0.0
	details := make([]models.ReceivingNoteDetail, 0, len(input.Details))

	for _, in := range input.Details {
		if in.Quantity < 1 {
			return nil, models.NewValidationError("quantity for product %s must be at least 1, got %d", in.ProductID, in.Quantity)
		}
		if in.UnitPrice < 0 {
			return nil, models.NewValidationError("unit price for product %s must not be negative", in.ProductID)
		}

		if _, err := s.products.FindProduct(ctx, in.ProductID); err != nil {
			return nil, err
		}

		subtotal := float64(in.Quantity) * in.UnitPrice
		total += subtotal
		details = append(details, models.ReceivingNoteDetail{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Subtotal:  subtotal,
			Remark:    in.Remark,
		})
	}

	number, err := nextNumber(ctx, s.seq, receivingPrefix, s.now())
	if err != nil {
		return nil, err
	}

	note := &models.ReceivingNote{
		ID:        uuid.NewString(),
		Number:    number,
		UserID:    userID,
		Supplier:  input.Supplier,
		Details:   details,
		Total:     total,
		Status:    models.NotePending,
		Notes:     input.Notes,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.InsertReceivingNote(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("receiving note created",
		zap.String("note_id", note.ID),
		zap.String("number", note.Number),
		zap.String("supplier", note.Supplier),
		zap.Float64("total", note.Total))
	return note, nil
}

// Get loads a receiving note by id.
func (s *ReceivingService) Get(ctx context.Context, id string) (*models.ReceivingNote, error) {
	return s.store.FindReceivingNote(ctx, id)
}

// List returns all receiving notes, newest first.
func (s *ReceivingService) List(ctx context.Context) ([]models.ReceivingNote, error) {
	return s.store.ListReceivingNotes(ctx, "")
}

// ListByUser returns the given identity's receiving notes, newest first.
func (s *ReceivingService) ListByUser(ctx context.Context, userID string) ([]models.ReceivingNote, error) {
	return s.store.ListReceivingNotes(ctx, userID)
}

// Process moves a pending note to processed, crediting stock for every
// detail. A credit only fails when the product vanished; in that case the
// credits taken so far are debited back and the note stays pending.
func (s *ReceivingService) Process(ctx context.Context, id string) (*models.ReceivingNote, error) {
	note, err := s.store.FindReceivingNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(note.Status, models.NoteProcessed); err != nil {
		return nil, err
	}

	for i, detail := range note.Details {
		if _, err := s.ledger.Credit(ctx, detail.ProductID, detail.Quantity); err != nil {
			s.undoCredits(ctx, note, i)
			return nil, err
		}
	}

	note.Status = models.NoteProcessed
	if err := s.store.UpdateReceivingNote(ctx, note); err != nil {
		s.undoCredits(ctx, note, len(note.Details))
		return nil, err
	}

	s.logger.Info("receiving note processed", zap.String("note_id", note.ID), zap.String("number", note.Number))
	return note, nil
}

// Cancel moves a pending note to cancelled. No stock effect.
func (s *ReceivingService) Cancel(ctx context.Context, id string) (*models.ReceivingNote, error) {
	note, err := s.store.FindReceivingNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(note.Status, models.NoteCancelled); err != nil {
		return nil, err
	}

	note.Status = models.NoteCancelled
	if err := s.store.UpdateReceivingNote(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("receiving note cancelled", zap.String("note_id", note.ID), zap.String("number", note.Number))
	return note, nil
}

func (s *ReceivingService) undoCredits(ctx context.Context, note *models.ReceivingNote, credited int) {
	for _, detail := range note.Details[:credited] {
		if _, err := s.ledger.Debit(ctx, detail.ProductID, detail.Quantity); err != nil {
			s.logger.Error("failed to revert credit after aborted note processing",
				zap.String("note_id", note.ID),
				zap.String("product_id", detail.ProductID),
				zap.Int("quantity", detail.Quantity),
				zap.Error(err))
		}
	}
}
