package inventory

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// MarshalJSON writes price as a JSON number, the shape storefront clients
// have always received.
func (p Product) MarshalJSON() ([]byte, error) {
	type wire Product
	return json.Marshal(struct {
		wire
		Price json.Number `json:"price"`
	}{wire: wire(p), Price: json.Number(p.Price.String())})
}

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

const imageBase = "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/"

func seedProducts() []Product {
	return []Product{
		{ID: 1, Title: "Lightweight Comfort Walking Sneaker", Price: decimal.RequireFromString("179.9"), Image: imageBase + "tenis1.jpg"},
		{ID: 2, Title: "VR Leather Detail Walking Sneaker", Price: decimal.RequireFromString("139.9"), Image: imageBase + "tenis2.jpg"},
		{ID: 3, Title: "Adidas Duramo Lite 2.0", Price: decimal.RequireFromString("219.9"), Image: imageBase + "tenis3.jpg"},
		{ID: 4, Title: "VR Leather Detail Walking Sneaker", Price: decimal.RequireFromString("139.9"), Image: imageBase + "tenis2.jpg"},
		{ID: 5, Title: "Adidas Duramo Lite 2.0", Price: decimal.RequireFromString("219.9"), Image: imageBase + "tenis3.jpg"},
		{ID: 6, Title: "Lightweight Comfort Walking Sneaker", Price: decimal.RequireFromString("179.9"), Image: imageBase + "tenis1.jpg"},
	}
}

func seedStock() []Stock {
	return []Stock{
		{ID: 1, Amount: 3},
		{ID: 2, Amount: 5},
		{ID: 3, Amount: 2},
		{ID: 4, Amount: 1},
		{ID: 5, Amount: 5},
		{ID: 6, Amount: 10},
	}
}
