package services

import (
	"fmt"
	"math"
	"sort"

	"joygiver-server/models"

	"github.com/google/uuid"
)

// ItemAllocation is one item's share of a split contribution.
type ItemAllocation struct {
	WishlistItemID uuid.UUID
	Amount         float64
}

// ToCents converts a monetary amount to integer minor units, rounding
// to the nearest cent. Float binary representation makes a plain
// truncation drop a cent on amounts like 19.99.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

// AllocateContribution splits a bulk contribution across a wishlist's
// fundable items according to the chosen strategy. All arithmetic is
// done in integer cents so the parts always sum to the whole.
//
// Items that are inactive or already fully funded must be filtered out
// by the caller. Surplus beyond every item's remaining need lands on
// the first item in priority order; items can be over-funded the same
// way a direct item gift can over-fund.
func AllocateContribution(strategy string, amount float64, items []models.WishlistItem) ([]ItemAllocation, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("contribution amount must be positive")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no fundable items to allocate to")
	}

	// Stable priority order: lowest priority value first, oldest first on ties
	ordered := make([]models.WishlistItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	total := ToCents(amount)
	needs := make([]int64, len(ordered))
	for i, item := range ordered {
		need := ToCents(item.Price) - ToCents(item.AmountContributed)
		if need < 0 {
			need = 0
		}
		needs[i] = need
	}

	var shares []int64
	switch strategy {
	case models.StrategyPriority:
		shares = allocateByPriority(total, needs)
	case models.StrategyEqual:
		shares = allocateEqually(total, needs)
	case models.StrategyProportional:
		shares = allocateProportionally(total, needs)
	default:
		return nil, fmt.Errorf("unknown allocation strategy: %s", strategy)
	}

	// Whatever the strategies could not place goes to the top item
	var placed int64
	for _, s := range shares {
		placed += s
	}
	if surplus := total - placed; surplus > 0 {
		shares[0] += surplus
	}

	allocations := make([]ItemAllocation, 0, len(ordered))
	for i, share := range shares {
		if share == 0 {
			continue
		}
		allocations = append(allocations, ItemAllocation{
			WishlistItemID: ordered[i].ID,
			Amount:         fromCents(share),
		})
	}
	return allocations, nil
}

// allocateByPriority fills items in order, each up to its remaining need.
func allocateByPriority(total int64, needs []int64) []int64 {
	shares := make([]int64, len(needs))
	remaining := total
	for i, need := range needs {
		if remaining == 0 {
			break
		}
		share := need
		if share > remaining {
			share = remaining
		}
		shares[i] = share
		remaining -= share
	}
	return shares
}

// allocateEqually splits evenly, caps each share at the item's need,
// and redistributes the freed-up remainder round-robin.
func allocateEqually(total int64, needs []int64) []int64 {
	shares := make([]int64, len(needs))
	remaining := total

	for remaining > 0 {
		open := 0
		for i := range needs {
			if shares[i] < needs[i] {
				open++
			}
		}
		if open == 0 {
			break
		}

		per := remaining / int64(open)
		if per == 0 {
			// Fewer cents than open items: hand them out one by one
			for i := range needs {
				if remaining == 0 {
					break
				}
				if shares[i] < needs[i] {
					shares[i]++
					remaining--
				}
			}
			break
		}

		for i := range needs {
			if shares[i] >= needs[i] {
				continue
			}
			share := per
			if room := needs[i] - shares[i]; share > room {
				share = room
			}
			shares[i] += share
			remaining -= share
		}
	}
	return shares
}

// allocateProportionally splits pro-rata to remaining need using
// largest-remainder rounding, capped at each item's need.
func allocateProportionally(total int64, needs []int64) []int64 {
	shares := make([]int64, len(needs))

	var totalNeed int64
	for _, need := range needs {
		totalNeed += need
	}
	if totalNeed == 0 {
		return shares
	}

	spend := total
	if spend > totalNeed {
		spend = totalNeed
	}

	type slice struct {
		index     int
		remainder int64
	}
	remainders := make([]slice, 0, len(needs))

	var placed int64
	for i, need := range needs {
		raw := spend * need // cents * cents fits int64 at NUMERIC(12,2) scale
		shares[i] = raw / totalNeed
		remainders = append(remainders, slice{index: i, remainder: raw % totalNeed})
		placed += shares[i]
	}

	// Largest remainders take the leftover cents
	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].remainder > remainders[j].remainder
	})
	for _, r := range remainders {
		if placed >= spend {
			break
		}
		if shares[r.index] < needs[r.index] {
			shares[r.index]++
			placed++
		}
	}
	return shares
}
