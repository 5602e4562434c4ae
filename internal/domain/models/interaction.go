package models

// Interaction kinds understood by the external interaction sink.
const (
	InteractionCart = "cart"
	InteractionView = "view"
)

// InteractionEvent is a best-effort notification about shopper behaviour.
// Delivery failures never affect the operation that produced the event.
type InteractionEvent struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Kind      string `json:"type"`
}
