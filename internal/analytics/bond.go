package analytics

import (
	"fmt"
	"math"
	"strconv"
)

// Bond is immutable reference data for a single fixed-income security.
type Bond struct {
	ISIN           string  `json:"isin"`
	Ticker         string  `json:"ticker"`          // issuer symbol
	MaturityBucket string  `json:"maturity_bucket"` // tenor label, e.g. "2Y", "5Y"
	RatingScore    float64 `json:"rating_score"`    // lower is better
	YieldLevel     float64 `json:"yield_level"`
	PriceLevel     float64 `json:"price_level"` // price in points (100 = par)
}

// NewBond builds a Bond, rejecting records with missing identifiers, a negative
// price, or any non-finite number.
func NewBond(isin, ticker, maturityBucket string, ratingScore, yieldLevel, priceLevel float64) (*Bond, error) {
	if isin == "" {
		return nil, fmt.Errorf("%w: isin is required", ErrInvalidBond)
	}
	if ticker == "" {
		return nil, fmt.Errorf("%w: %s: ticker is required", ErrInvalidBond, isin)
	}
	if maturityBucket == "" {
		return nil, fmt.Errorf("%w: %s: maturity bucket is required", ErrInvalidBond, isin)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"rating score", ratingScore}, {"yield level", yieldLevel}, {"price level", priceLevel}} {
		if !isFinite(f.value) {
			return nil, fmt.Errorf("%w: %s: %s is not finite", ErrInvalidBond, isin, f.name)
		}
	}
	if priceLevel < 0 {
		return nil, fmt.Errorf("%w: %s: negative price level %.4f", ErrInvalidBond, isin, priceLevel)
	}
	return &Bond{
		ISIN:           isin,
		Ticker:         ticker,
		MaturityBucket: maturityBucket,
		RatingScore:    ratingScore,
		YieldLevel:     yieldLevel,
		PriceLevel:     priceLevel,
	}, nil
}

// Position is a notional amount (in millions) held in one bond.
// The bond is shared, not owned; many positions may point at the same Bond.
type Position struct {
	Size float64
	Bond *Bond
}

// NewPosition builds a Position. Size must be finite and non-negative.
func NewPosition(size float64, bond *Bond) (*Position, error) {
	if bond == nil {
		return nil, fmt.Errorf("%w: bond is required", ErrInvalidPosition)
	}
	if !isFinite(size) {
		return nil, fmt.Errorf("%w: %s: size is not finite", ErrInvalidPosition, bond.ISIN)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: %s: negative size %.4f", ErrInvalidPosition, bond.ISIN, size)
	}
	return &Position{Size: size, Bond: bond}, nil
}

// MarketValue returns size * price level, still in price points.
func (p *Position) MarketValue() float64 {
	return p.Size * p.Bond.PriceLevel
}

func (p *Position) String() string {
	return "<" + p.Bond.Ticker + " | " + strconv.FormatFloat(p.Size, 'f', -1, 64) + "mm>"
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
