package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// pointsPerUnit converts price points (100 = par) into notional-scaled currency.
const pointsPerUnit = 100.0

// Limits holds the risk limits a portfolio is checked against.
type Limits struct {
	// TickerCap is the maximum aggregate size per issuer ticker.
	TickerCap map[string]float64 `json:"ticker_cap"`
	// BondCap is the maximum size of any single position, keyed by issuer ticker.
	BondCap map[string]float64 `json:"bond_cap"`
	// TenorLimits is the maximum aggregate size per maturity bucket.
	TenorLimits map[string]float64 `json:"tenor_limits"`
	// MinimumRating is an UPPER bound despite its name: a violation is
	// reported when the average rating score is greater than this value.
	MinimumRating float64 `json:"minimum_rating"`
}

// Portfolio is an ordered list of positions plus the limits that apply to it.
// Nothing in this package mutates a Portfolio or its bonds, so concurrent
// readers are safe as long as the caller does not mutate them either.
type Portfolio struct {
	positions []*Position
	limits    Limits
}

// NewPortfolio wraps positions and limits. The slice is not copied.
func NewPortfolio(positions []*Position, limits Limits) *Portfolio {
	return &Portfolio{positions: positions, limits: limits}
}

// Positions returns the portfolio positions in their original order.
func (p *Portfolio) Positions() []*Position {
	return p.positions
}

// Limits returns the configured limits.
func (p *Portfolio) Limits() Limits {
	return p.limits
}

// AverageYield returns the size-weighted average yield level.
func (p *Portfolio) AverageYield() (float64, error) {
	avg, ok := weightedMean(p.positions, func(b *Bond) float64 { return b.YieldLevel })
	if !ok {
		return 0, &DivisionUndefinedError{Metric: "average yield"}
	}
	return avg, nil
}

// AverageRating returns the size-weighted average rating score.
func (p *Portfolio) AverageRating() (float64, error) {
	avg, ok := weightedMean(p.positions, ratingOf)
	if !ok {
		return 0, &DivisionUndefinedError{Metric: "average rating"}
	}
	return avg, nil
}

// TenorBuckets returns total size per maturity bucket.
func (p *Portfolio) TenorBuckets() *Buckets {
	b := newBuckets()
	for _, pos := range p.positions {
		b.Add(pos.Bond.MaturityBucket, pos.Size)
	}
	return b
}

// TickerBuckets returns total size per issuer ticker.
func (p *Portfolio) TickerBuckets() *Buckets {
	b := newBuckets()
	for _, pos := range p.positions {
		b.Add(pos.Bond.Ticker, pos.Size)
	}
	return b
}

// PositionsByTenor groups positions by maturity bucket, keeping their
// original relative order within each bucket.
func (p *Portfolio) PositionsByTenor() map[string][]*Position {
	_, groups := p.groupByTenor()
	return groups
}

// MarketValue returns the sum of size * price level, divided by 100.
func (p *Portfolio) MarketValue() float64 {
	mv := 0.0
	for _, pos := range p.positions {
		mv += pos.MarketValue()
	}
	return mv / pointsPerUnit
}

// AverageRatingByTenor returns the size-weighted average rating of each
// maturity bucket. A bucket with zero total size fails the whole call.
func (p *Portfolio) AverageRatingByTenor() (map[string]float64, error) {
	tenors, groups := p.groupByTenor()
	out := make(map[string]float64, len(tenors))
	for _, tenor := range tenors {
		avg, ok := weightedMean(groups[tenor], ratingOf)
		if !ok {
			return nil, &DivisionUndefinedError{Metric: "average rating", Tenor: tenor}
		}
		out[tenor] = avg
	}
	return out, nil
}

// Violations checks the portfolio against its limits and returns one message
// per breach, in this order: ticker caps, per-position bond caps, tenor
// limits, average rating.
//
// The ticker cap check reports a missing cap as a violation. The bond cap and
// tenor limit magnitude checks do not: a ticker or tenor with exposure but no
// configured limit fails with a *MissingConfigurationError. A missing tenor
// limit is still reported as a violation first. On error the messages
// collected up to that point are returned alongside it.
func (p *Portfolio) Violations() ([]string, error) {
	violations := []string{}

	tickers := p.TickerBuckets()
	for _, ticker := range tickers.Keys() {
		total, _ := tickers.Get(ticker)
		limit, ok := p.limits.TickerCap[ticker]
		if !ok {
			violations = append(violations, fmt.Sprintf("No ticker cap for ticker: %s", ticker))
		} else if total > limit {
			violations = append(violations, fmt.Sprintf("Ticker exceeds limit: %s", ticker))
		}
	}

	for _, pos := range p.positions {
		ticker := pos.Bond.Ticker
		limit, ok := p.limits.BondCap[ticker]
		if !ok {
			return violations, &MissingConfigurationError{Limit: LimitBondCap, Key: ticker}
		}
		if pos.Size > limit {
			violations = append(violations, fmt.Sprintf("Position size exceeds limit: %s", ticker))
		}
	}

	tenors := p.TenorBuckets()
	for _, tenor := range tenors.Keys() {
		total, _ := tenors.Get(tenor)
		limit, ok := p.limits.TenorLimits[tenor]
		if !ok {
			violations = append(violations, fmt.Sprintf("Tenor not in tenor_limits: %s", tenor))
			return violations, &MissingConfigurationError{Limit: LimitTenorLimits, Key: tenor}
		}
		if total > limit {
			violations = append(violations, fmt.Sprintf("Tenor size exceeds limit: %s", tenor))
		}
	}

	avg, err := p.AverageRating()
	if err != nil {
		return violations, err
	}
	if avg > p.limits.MinimumRating {
		violations = append(violations, fmt.Sprintf("Average rating is %s, below min rating %s", formatRating(avg), formatRating(p.limits.MinimumRating)))
	}

	return violations, nil
}

func (p *Portfolio) groupByTenor() ([]string, map[string][]*Position) {
	var tenors []string
	groups := make(map[string][]*Position)
	for _, pos := range p.positions {
		tenor := pos.Bond.MaturityBucket
		if _, ok := groups[tenor]; !ok {
			tenors = append(tenors, tenor)
		}
		groups[tenor] = append(groups[tenor], pos)
	}
	return tenors, groups
}

func ratingOf(b *Bond) float64 { return b.RatingScore }

// formatRating prints the shortest representation of v, always with a decimal
// point: 4 -> "4.0", 2.75 -> "2.75".
func formatRating(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// weightedMean returns sum(size*field)/sum(size). ok is false when the total
// size is zero, which includes an empty slice.
func weightedMean(positions []*Position, field func(*Bond) float64) (float64, bool) {
	values := make([]float64, len(positions))
	sizes := make([]float64, len(positions))
	for i, pos := range positions {
		values[i] = field(pos.Bond)
		sizes[i] = pos.Size
	}
	if floats.Sum(sizes) == 0 {
		return 0, false
	}
	return stat.Mean(values, sizes), true
}
