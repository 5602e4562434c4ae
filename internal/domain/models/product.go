package models

// Product is owned by the catalog collaborator. This core reads price and
// name but only ever writes the stock counter, and only through the ledger.
type Product struct {
	ID     string  `bson:"_id" json:"id"`
	Name   string  `bson:"name" json:"name"`
	Price  float64 `bson:"price" json:"price"`
	Stock  int     `bson:"stock" json:"stock"`
	Active bool    `bson:"active" json:"active"`
}
