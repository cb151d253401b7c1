package invoice

import (
	"context"
	"fmt"
)

// Sequence hands out strictly increasing values per year. Allocation must be
// serialized so two concurrent generations never share a value.
type Sequence interface {
	Next(ctx context.Context, year int) (int64, error)
}

// FormatNumber renders the year-scoped invoice number, e.g. FAC-2026-00042.
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("FAC-%d-%05d", year, seq)
}
