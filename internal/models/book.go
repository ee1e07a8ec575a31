package models

import (
	"time"
)

// LimitKind identifies which limit table a BookLimit row belongs to
type LimitKind string

const (
	LimitKindTickerCap  LimitKind = "ticker_cap"
	LimitKindBondCap    LimitKind = "bond_cap"
	LimitKindTenorLimit LimitKind = "tenor_limit"
)

// Book is a named set of positions checked against one set of limits
type Book struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	MinimumRating float64   `json:"minimum_rating"` // upper bound on average rating, see analytics.Limits
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookPosition is one stored position. Ordinal preserves the upload order,
// which in turn fixes the order of positions passed to the analytics.
type BookPosition struct {
	BookID  int64   `json:"book_id"`
	Ordinal int     `json:"ordinal"`
	ISIN    string  `json:"isin"`
	Size    float64 `json:"size"`
}

// BookLimit is one configured limit row
type BookLimit struct {
	BookID int64     `json:"book_id"`
	Kind   LimitKind `json:"kind"`
	Key    string    `json:"key"`
	Value  float64   `json:"value"`
}
