package models

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Search methods reported to the caller. The presence of fallback_reason is what
// distinguishes a degraded semantic search from a deliberate keyword search.
const (
	MethodNone         = "none"
	MethodCategoryOnly = "category-filter-only"
	MethodKeyword      = "keyword"
	MethodSemantic     = "semantic"
)

type Product struct {
	ID          string   `bson:"_id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description" json:"description"`
	Category    string   `bson:"category" json:"category"`
	Tags        []string `bson:"tags" json:"tags"`
	Price       int      `bson:"price" json:"price"`
	Currency    string   `bson:"currency" json:"currency"`
	InStock     bool     `bson:"in_stock" json:"in_stock"`
	Quantity    int      `bson:"quantity" json:"quantity"`
	Image       string   `bson:"image" json:"image"`

	// Position preserves catalog insertion order so snapshots are stable.
	Position int `bson:"position" json:"-"`

	// DisplayPrice is computed per response, never stored.
	DisplayPrice string `bson:"-" json:"display_price,omitempty"`
}

// ScoredCandidate pairs a product ID with its similarity score. Candidates are
// ephemeral: produced per query, discarded after ranking.
type ScoredCandidate struct {
	ID    string
	Score float64
}

type SearchResponse struct {
	Success        bool      `json:"success"`
	Results        []Product `json:"results"`
	Count          int       `json:"count"`
	Query          string    `json:"query"`
	Category       string    `json:"category"`
	SearchMethod   string    `json:"search_method"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
}

// FormatPrice renders a minor-unit price ("1299") as a display string ("$12.99").
// Unknown currency codes fall back to USD.
func FormatPrice(priceMinor int, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("%v%.2f", currency.Symbol(unit), float64(priceMinor)/100)
}
