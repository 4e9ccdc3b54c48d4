package ioport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoIntsRoundTrip(t *testing.T) {
	prev := StartNoInts()
	require.True(t, prev, "ints were enabled before the outer start")
	assert.False(t, Enabled())
	EndNoInts(prev)
	assert.True(t, Enabled())
}

func TestNoIntsNesting(t *testing.T) {
	outer := StartNoInts()
	assert.False(t, Enabled())

	inner := StartNoInts()
	assert.False(t, inner, "inner start observes ints already disabled")
	assert.False(t, Enabled())

	EndNoInts(inner)
	assert.False(t, Enabled(), "inner end must not re-enable what the outer section still expects disabled")

	EndNoInts(outer)
	assert.True(t, Enabled())
}

func TestPageTableUnmapsNullPage(t *testing.T) {
	pt := NewPageTable([][2]uint64{{0, 1 << 20}}, 4096)
	assert.False(t, pt.Mapped(0))
	assert.True(t, pt.Mapped(4096))
	assert.True(t, pt.Mapped(1<<20-1))
}
