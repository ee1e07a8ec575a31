package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = positions, W2xxx = reference data.
type WarningCode string

const (
	WarnZeroSizePosition WarningCode = "W1001" // position with zero size, kept but carries no weight
	WarnZeroPriceBond    WarningCode = "W2001" // bond with zero price level, contributes nothing to market value
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
