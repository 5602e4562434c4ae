package models

import "time"

// Discount is produced by the catalog collaborator and read-only here. A
// code is eligible while active and inside [StartDate, EndDate], compared
// at calendar-date granularity with both bounds inclusive.
type Discount struct {
	Code       string    `bson:"code" json:"code"`
	Percentage float64   `bson:"percentage" json:"percentage"`
	StartDate  time.Time `bson:"start_date" json:"start_date"`
	EndDate    time.Time `bson:"end_date" json:"end_date"`
	Active     bool      `bson:"active" json:"active"`
}
