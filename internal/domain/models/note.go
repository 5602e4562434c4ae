package models

import "time"

// NoteStatus is the state of an inventory movement document. Transitions
// are pending→processed and pending→cancelled; both targets are terminal.
type NoteStatus string

const (
	NotePending   NoteStatus = "pending"
	NoteProcessed NoteStatus = "processed"
	NoteCancelled NoteStatus = "cancelled"
)

var noteTransitions = map[NoteStatus]map[NoteStatus]bool{
	NotePending: {
		NoteProcessed: true,
		NoteCancelled: true,
	},
}

// CanTransitionTo reports whether the transition s→to is permitted.
func (s NoteStatus) CanTransitionTo(to NoteStatus) bool {
	return noteTransitions[s][to]
}

// Terminal reports whether no further transitions are permitted from s.
func (s NoteStatus) Terminal() bool {
	return len(noteTransitions[s]) == 0
}

// SalesNoteDetail is one line of a sales note. The unit price is supplied
// by the author, not read from the catalog.
type SalesNoteDetail struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	Subtotal  float64 `bson:"subtotal" json:"subtotal"`
}

// SalesNote records a manual sale. Processing it debits stock for every
// detail; the total is fixed at creation and never recomputed.
type SalesNote struct {
	ID        string            `bson:"_id" json:"id"`
	Number    string            `bson:"number" json:"number"`
	UserID    string            `bson:"user_id" json:"user_id"`
	OrderID   string            `bson:"order_id,omitempty" json:"order_id,omitempty"`
	Details   []SalesNoteDetail `bson:"details" json:"details"`
	Total     float64           `bson:"total" json:"total"`
	Status    NoteStatus        `bson:"status" json:"status"`
	Notes     string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}

// ReceivingNoteDetail is one line of a goods receipt.
type ReceivingNoteDetail struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	Subtotal  float64 `bson:"subtotal" json:"subtotal"`
	Remark    string  `bson:"remark,omitempty" json:"remark,omitempty"`
}

// ReceivingNote records inbound stock from a supplier. Processing it
// credits stock for every detail.
type ReceivingNote struct {
	ID        string                `bson:"_id" json:"id"`
	Number    string                `bson:"number" json:"number"`
	UserID    string                `bson:"user_id" json:"user_id"`
	Supplier  string                `bson:"supplier" json:"supplier"`
	Details   []ReceivingNoteDetail `bson:"details" json:"details"`
	Total     float64               `bson:"total" json:"total"`
	Status    NoteStatus            `bson:"status" json:"status"`
	Notes     string                `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time             `bson:"created_at" json:"created_at"`
}

// SalesNoteStats is the aggregate used by the reporting read side.
type SalesNoteStats struct {
	Total           int     `json:"total"`
	Pending         int     `json:"pending"`
	Processed       int     `json:"processed"`
	Cancelled       int     `json:"cancelled"`
	ProcessedAmount float64 `json:"processed_amount"`
}
