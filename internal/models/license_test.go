// internal/models/license_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poolInvariantHolds(l *License) bool {
	return l.AvailableCount >= 0 && l.AvailableCount <= l.TotalCount
}

func TestConsumeSeatStopsAtZero(t *testing.T) {
	license := &License{TotalCount: 2, AvailableCount: 2}

	require.NoError(t, license.ConsumeSeat())
	require.NoError(t, license.ConsumeSeat())
	assert.Equal(t, 0, license.AvailableCount)

	err := license.ConsumeSeat()
	assert.Error(t, err)
	assert.Equal(t, 0, license.AvailableCount)
	assert.True(t, poolInvariantHolds(license))
}

func TestRestoreSeatAtCapacityIsNoOp(t *testing.T) {
	license := &License{TotalCount: 3, AvailableCount: 3}

	license.RestoreSeat()

	assert.Equal(t, 3, license.AvailableCount)
	assert.True(t, poolInvariantHolds(license))
}

func TestRestoreSeatAfterConsume(t *testing.T) {
	license := &License{TotalCount: 3, AvailableCount: 1}

	license.RestoreSeat()

	assert.Equal(t, 2, license.AvailableCount)
	assert.Equal(t, 1, license.UsageCount())
}

func TestResizePoolRefusesToShrinkBelowUsage(t *testing.T) {
	license := &License{TotalCount: 10, AvailableCount: 4} // 6 seats in use

	err := license.ResizePool(5)
	require.Error(t, err)
	assert.Equal(t, 10, license.TotalCount)
	assert.Equal(t, 4, license.AvailableCount)
}

func TestResizePoolPreservesUsage(t *testing.T) {
	license := &License{TotalCount: 10, AvailableCount: 4} // 6 seats in use

	require.NoError(t, license.ResizePool(8))

	assert.Equal(t, 8, license.TotalCount)
	assert.Equal(t, 2, license.AvailableCount)
	assert.Equal(t, 6, license.UsageCount())
	assert.True(t, poolInvariantHolds(license))

	// Shrinking exactly to the consumed count leaves no free seats.
	require.NoError(t, license.ResizePool(6))
	assert.Equal(t, 0, license.AvailableCount)
	assert.True(t, poolInvariantHolds(license))
}
