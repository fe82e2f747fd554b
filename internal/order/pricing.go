package order

import (
	"fmt"
	"math"
)

// PackageOffer is one orderable package and its base price in whole Rupiah.
type PackageOffer struct {
	Name      string
	BasePrice int64
}

// Selection is the ephemeral order assembled on every dispatch.
type Selection struct {
	Package PackageOffer
	Addons  []AddonEntry
	Total   int64
}

// ComputeTotal returns base plus the price of every selected add-on.
func ComputeTotal(base int64, addons []AddonEntry) int64 {
	total := base
	for _, a := range addons {
		if a.Selected {
			total += a.Price
		}
	}
	return total
}

// CheckedTotal is ComputeTotal that rejects a sum beyond int64 with ErrMalformedPrice.
func CheckedTotal(base int64, addons []AddonEntry) (int64, error) {
	total := base
	for _, a := range addons {
		if !a.Selected {
			continue
		}
		if a.Price > math.MaxInt64-total {
			return 0, fmt.Errorf("%w: total overflows", ErrMalformedPrice)
		}
		total += a.Price
	}
	return total, nil
}
