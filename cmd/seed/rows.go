package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const (
	datasetName        = "Q4 Global Sales"
	datasetDescription = "Seeded dataset for LLM testing"
	defaultRows        = 1500
)

var (
	regions  = []string{"North", "South", "East", "West"}
	products = []string{"Laptop", "Phone", "Tablet", "Monitor"}

	quarterStart = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	quarterDays  = 92
)

// datasetMetadata maps each column of a sale row to its loose type.
var datasetMetadata = map[string]string{
	"order_id": "string",
	"date":     "date",
	"region":   "string",
	"product":  "string",
	"units":    "integer",
	"revenue":  "integer",
}

type saleRow struct {
	OrderID string `json:"order_id"`
	Date    string `json:"date"`
	Region  string `json:"region"`
	Product string `json:"product"`
	Units   int    `json:"units"`
	Revenue int    `json:"revenue"`
}

// generateRows returns n sale rows. The same seed always yields the same rows.
func generateRows(n int, seed uint64) ([]json.RawMessage, error) {
	var key [32]byte
	for i := range 8 {
		key[i] = byte(seed >> (8 * i))
	}
	src := rand.NewChaCha8(key)
	r := rand.New(src)

	rows := make([]json.RawMessage, 0, n)
	for range n {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("order id: %w", err)
		}
		row := saleRow{
			OrderID: id.String(),
			Date:    quarterStart.AddDate(0, 0, r.IntN(quarterDays)).Format(time.DateOnly),
			Region:  regions[r.IntN(len(regions))],
			Product: products[r.IntN(len(products))],
			Units:   1 + r.IntN(50),
			Revenue: 100 + r.IntN(4901),
		}
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshal row: %w", err)
		}
		rows = append(rows, data)
	}
	return rows, nil
}
