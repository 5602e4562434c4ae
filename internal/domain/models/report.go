package models

import "time"

// DailySalesReport is the persisted snapshot of the sales note statistics
// taken by the scheduled reporting job.
type DailySalesReport struct {
	Date            time.Time `bson:"date" json:"date"`
	TotalNotes      int       `bson:"total_notes" json:"total_notes"`
	Pending         int       `bson:"pending" json:"pending"`
	Processed       int       `bson:"processed" json:"processed"`
	Cancelled       int       `bson:"cancelled" json:"cancelled"`
	ProcessedAmount float64   `bson:"processed_amount" json:"processed_amount"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
