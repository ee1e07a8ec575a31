package analytics

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionUndefined    = errors.New("division undefined: zero total notional")
	ErrMissingConfiguration = errors.New("missing configuration")
	ErrInvalidBond          = errors.New("invalid bond")
	ErrInvalidPosition      = errors.New("invalid position")
)

// Limit names used in MissingConfigurationError.
const (
	LimitTickerCap   = "ticker_cap"
	LimitBondCap     = "bond_cap"
	LimitTenorLimits = "tenor_limits"
)

// MissingConfigurationError reports a limit lookup for a key that has live
// exposure but no configured limit.
type MissingConfigurationError struct {
	Limit string
	Key   string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration for key %q in %s", e.Key, e.Limit)
}

func (e *MissingConfigurationError) Unwrap() error {
	return ErrMissingConfiguration
}

// DivisionUndefinedError reports a weighted average whose total notional is zero.
// Tenor is empty when the average covers the whole portfolio.
type DivisionUndefinedError struct {
	Metric string
	Tenor  string
}

func (e *DivisionUndefinedError) Error() string {
	if e.Tenor == "" {
		return fmt.Sprintf("%s: %s", e.Metric, ErrDivisionUndefined)
	}
	return fmt.Sprintf("%s for tenor %q: %s", e.Metric, e.Tenor, ErrDivisionUndefined)
}

func (e *DivisionUndefinedError) Unwrap() error {
	return ErrDivisionUndefined
}
