package models

// AnalyzeRequest is an inline book: bond reference data, positions that
// refer to those bonds by ISIN, and the limits to check.
type AnalyzeRequest struct {
	Bonds     []BondRequest     `json:"bonds" binding:"dive"`
	Positions []PositionRequest `json:"positions" binding:"dive"`
	Limits    LimitsRequest     `json:"limits"`
}

// BondRequest carries reference data for one bond
type BondRequest struct {
	ISIN           string  `json:"isin" binding:"required"`
	Ticker         string  `json:"ticker" binding:"required"`
	MaturityBucket string  `json:"maturity_bucket" binding:"required,tenor"`
	RatingScore    float64 `json:"rating_score"`
	YieldLevel     float64 `json:"yield_level"`
	PriceLevel     float64 `json:"price_level" binding:"gte=0"`
}

// PositionRequest is a size in millions held in the bond with the given ISIN
type PositionRequest struct {
	ISIN string  `json:"isin" binding:"required"`
	Size float64 `json:"size" binding:"gte=0"`
}

// LimitsRequest mirrors analytics.Limits.
// MinimumRating is compared as an upper bound on the average rating.
type LimitsRequest struct {
	TickerCap     map[string]float64 `json:"ticker_cap" binding:"dive,gte=0"`
	BondCap       map[string]float64 `json:"bond_cap" binding:"dive,gte=0"`
	TenorLimits   map[string]float64 `json:"tenor_limits" binding:"dive,keys,tenor,endkeys,gte=0"`
	MinimumRating *float64           `json:"minimum_rating" binding:"required"`
}

// AnalyticsReport is the full result of one analysis pass
type AnalyticsReport struct {
	BookID               *int64             `json:"book_id,omitempty"`
	Positions            int                `json:"positions"`
	AverageYield         float64            `json:"average_yield"`
	AverageRating        float64            `json:"average_rating"`
	MarketValue          float64            `json:"market_value"`
	AverageRatingByTenor map[string]float64 `json:"average_rating_by_tenor"`
	TenorBuckets         map[string]float64 `json:"tenor_buckets"`
	TickerBuckets        map[string]float64 `json:"ticker_buckets"`
	Violations           []string           `json:"violations"`
	Warnings             []Warning          `json:"warnings,omitempty"`
}

// ImportResponse reports how many rows an upload stored
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateBookRequest represents the request body for creating a book
type CreateBookRequest struct {
	Name          string   `json:"name" binding:"required"`
	MinimumRating *float64 `json:"minimum_rating" binding:"required"`
}
