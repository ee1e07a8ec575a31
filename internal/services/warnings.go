package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/epeers/bondrisk/internal/models"
)

type warningContextKey struct{}

// WarningCollector gathers the non-fatal findings of one report build, such as
// zero-size positions or bonds priced at zero. They end up in
// AnalyticsReport.Warnings rather than failing the request.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []models.Warning
}

// NewWarningContext attaches an empty collector to ctx and returns both.
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{}
	return context.WithValue(ctx, warningContextKey{}, wc), wc
}

// AddWarning records w on the collector carried by ctx. Without one it does nothing.
func AddWarning(ctx context.Context, w models.Warning) {
	if wc, ok := ctx.Value(warningContextKey{}).(*WarningCollector); ok && wc != nil {
		wc.add(w)
	}
}

// addWarningf formats a message and records it under code, e.g.
// addWarningf(ctx, models.WarnZeroPriceBond, "bond %s has zero price level", isin).
func addWarningf(ctx context.Context, code models.WarningCode, format string, args ...any) {
	AddWarning(ctx, models.Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

func (wc *WarningCollector) add(w models.Warning) {
	wc.mu.Lock()
	wc.warnings = append(wc.warnings, w)
	wc.mu.Unlock()
}

// GetWarnings returns a snapshot of the warnings in the order they were added.
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	out := make([]models.Warning, len(wc.warnings))
	copy(out, wc.warnings)
	return out
}
