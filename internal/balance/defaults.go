package balance

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultAllocations is the configuration-provided leave_type -> allocated
// days mapping ResetYear seeds from. LEAVE_DEFAULT_ALLOCATIONS overrides it
// with entries like "casual=12,sick=7.5"; malformed entries are skipped.
func DefaultAllocations() map[string]decimal.Decimal {
	defaults := map[string]decimal.Decimal{
		"casual":         decimal.NewFromInt(12),
		"sick":           decimal.NewFromInt(10),
		"earned":         decimal.NewFromInt(15),
		"study":          decimal.NewFromInt(5),
		"work_from_home": decimal.NewFromInt(52),
		"loss_of_pay":    decimal.NewFromInt(0),
	}

	raw := os.Getenv("LEAVE_DEFAULT_ALLOCATIONS")
	if raw == "" {
		return defaults
	}

	overridden := make(map[string]decimal.Decimal)
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		if len(parts) != 2 {
			continue
		}
		days, err := decimal.NewFromString(parts[1])
		if err != nil || days.IsNegative() {
			continue
		}
		overridden[parts[0]] = days
	}

	if len(overridden) == 0 {
		return defaults
	}
	return overridden
}
