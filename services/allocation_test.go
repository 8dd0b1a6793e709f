package services

import (
	"testing"
	"time"

	"joygiver-server/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItem(price, contributed float64, priority int, age time.Duration) models.WishlistItem {
	return models.WishlistItem{
		ID:                uuid.New(),
		Price:             price,
		AmountContributed: contributed,
		Priority:          priority,
		CreatedAt:         time.Now().Add(-age),
	}
}

func amountFor(allocations []ItemAllocation, id uuid.UUID) float64 {
	for _, a := range allocations {
		if a.WishlistItemID == id {
			return a.Amount
		}
	}
	return 0
}

func totalOf(allocations []ItemAllocation) float64 {
	var sum float64
	for _, a := range allocations {
		sum += a.Amount
	}
	return sum
}

func TestToCentsRoundsToNearestCent(t *testing.T) {
	// Amounts without an exact float representation must not lose a cent
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, int64(115), ToCents(1.15))
	assert.Equal(t, int64(29), ToCents(0.29))
	assert.Equal(t, int64(100), ToCents(1.00))
	assert.Equal(t, int64(0), ToCents(0))
}

func TestAllocateByPriorityFillsInOrder(t *testing.T) {
	first := makeItem(50, 0, 1, 3*time.Hour)
	second := makeItem(30, 0, 2, 2*time.Hour)
	third := makeItem(40, 0, 3, time.Hour)

	allocations, err := AllocateContribution(models.StrategyPriority, 70,
		[]models.WishlistItem{third, first, second})
	require.NoError(t, err)

	assert.Equal(t, 50.0, amountFor(allocations, first.ID))
	assert.Equal(t, 20.0, amountFor(allocations, second.ID))
	assert.Equal(t, 0.0, amountFor(allocations, third.ID))
	assert.Equal(t, 70.0, totalOf(allocations))
}

func TestAllocateByPriorityRespectsPartialFunding(t *testing.T) {
	first := makeItem(100, 90, 1, 2*time.Hour)
	second := makeItem(50, 0, 2, time.Hour)

	allocations, err := AllocateContribution(models.StrategyPriority, 25,
		[]models.WishlistItem{first, second})
	require.NoError(t, err)

	assert.Equal(t, 10.0, amountFor(allocations, first.ID))
	assert.Equal(t, 15.0, amountFor(allocations, second.ID))
}

func TestAllocateByPriorityBreaksTiesByAge(t *testing.T) {
	older := makeItem(20, 0, 1, 2*time.Hour)
	newer := makeItem(20, 0, 1, time.Hour)

	allocations, err := AllocateContribution(models.StrategyPriority, 20,
		[]models.WishlistItem{newer, older})
	require.NoError(t, err)

	assert.Equal(t, 20.0, amountFor(allocations, older.ID))
	assert.Equal(t, 0.0, amountFor(allocations, newer.ID))
}

func TestAllocateEquallySplitsEvenly(t *testing.T) {
	a := makeItem(100, 0, 1, 3*time.Hour)
	b := makeItem(100, 0, 2, 2*time.Hour)
	c := makeItem(100, 0, 3, time.Hour)

	allocations, err := AllocateContribution(models.StrategyEqual, 90,
		[]models.WishlistItem{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, 30.0, amountFor(allocations, a.ID))
	assert.Equal(t, 30.0, amountFor(allocations, b.ID))
	assert.Equal(t, 30.0, amountFor(allocations, c.ID))
}

func TestAllocateEquallyCapsAtNeedAndRedistributes(t *testing.T) {
	small := makeItem(10, 0, 1, 3*time.Hour)
	big := makeItem(100, 0, 2, 2*time.Hour)
	other := makeItem(100, 0, 3, time.Hour)

	allocations, err := AllocateContribution(models.StrategyEqual, 90,
		[]models.WishlistItem{small, big, other})
	require.NoError(t, err)

	// small takes its full 10; the freed 20 splits over the other two
	assert.Equal(t, 10.0, amountFor(allocations, small.ID))
	assert.Equal(t, 40.0, amountFor(allocations, big.ID))
	assert.Equal(t, 40.0, amountFor(allocations, other.ID))
	assert.Equal(t, 90.0, totalOf(allocations))
}

func TestAllocateEquallyHandsOutOddCents(t *testing.T) {
	a := makeItem(100, 0, 1, 3*time.Hour)
	b := makeItem(100, 0, 2, 2*time.Hour)
	c := makeItem(100, 0, 3, time.Hour)

	allocations, err := AllocateContribution(models.StrategyEqual, 1.00,
		[]models.WishlistItem{a, b, c})
	require.NoError(t, err)

	assert.InDelta(t, 1.00, totalOf(allocations), 1e-9)
	assert.Equal(t, 0.34, amountFor(allocations, a.ID))
	assert.Equal(t, 0.33, amountFor(allocations, b.ID))
	assert.Equal(t, 0.33, amountFor(allocations, c.ID))
}

func TestAllocateProportionallyMatchesNeedRatio(t *testing.T) {
	a := makeItem(300, 0, 1, 2*time.Hour)
	b := makeItem(100, 0, 2, time.Hour)

	allocations, err := AllocateContribution(models.StrategyProportional, 100,
		[]models.WishlistItem{a, b})
	require.NoError(t, err)

	assert.Equal(t, 75.0, amountFor(allocations, a.ID))
	assert.Equal(t, 25.0, amountFor(allocations, b.ID))
}

func TestAllocateProportionallySumsExactly(t *testing.T) {
	a := makeItem(33.33, 0, 1, 3*time.Hour)
	b := makeItem(33.33, 0, 2, 2*time.Hour)
	c := makeItem(33.34, 0, 3, time.Hour)

	allocations, err := AllocateContribution(models.StrategyProportional, 10,
		[]models.WishlistItem{a, b, c})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, totalOf(allocations), 1e-9)
}

func TestSurplusLandsOnTopPriorityItem(t *testing.T) {
	first := makeItem(10, 0, 1, 2*time.Hour)
	second := makeItem(10, 0, 2, time.Hour)

	allocations, err := AllocateContribution(models.StrategyEqual, 50,
		[]models.WishlistItem{first, second})
	require.NoError(t, err)

	// 20 covers both needs, the extra 30 parks on the first item
	assert.Equal(t, 40.0, amountFor(allocations, first.ID))
	assert.Equal(t, 10.0, amountFor(allocations, second.ID))
}

func TestAllocateRejectsBadInput(t *testing.T) {
	item := makeItem(10, 0, 1, time.Hour)

	_, err := AllocateContribution(models.StrategyPriority, 0, []models.WishlistItem{item})
	assert.Error(t, err)

	_, err = AllocateContribution(models.StrategyPriority, 10, nil)
	assert.Error(t, err)

	_, err = AllocateContribution("random", 10, []models.WishlistItem{item})
	assert.Error(t, err)
}

func TestAllocateSkipsZeroShares(t *testing.T) {
	funded := makeItem(50, 50, 1, 2*time.Hour)
	open := makeItem(50, 0, 2, time.Hour)

	allocations, err := AllocateContribution(models.StrategyProportional, 20,
		[]models.WishlistItem{funded, open})
	require.NoError(t, err)

	require.Len(t, allocations, 1)
	assert.Equal(t, open.ID, allocations[0].WishlistItemID)
	assert.Equal(t, 20.0, allocations[0].Amount)
}
