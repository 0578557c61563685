package storage

import (
	"testing"
	"time"

	"github.com/poiesic/domicil/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorEntryRoundTrip(t *testing.T) {
	entry := &core.VectorEntry{
		ListingID:    "l-42",
		Vector:       []float32{0.12, -0.5, 0.98, 0.0},
		PropertyType: core.PropertyHouse,
		ListingType:  core.ListingSale,
		UpdatedAt:    time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	data := MarshalVectorEntry(entry)
	decoded, err := UnmarshalVectorEntry(data)
	require.NoError(t, err)

	assert.Equal(t, entry.ListingID, decoded.ListingID)
	assert.Equal(t, entry.Vector, decoded.Vector)
	assert.Equal(t, entry.PropertyType, decoded.PropertyType)
	assert.Equal(t, entry.ListingType, decoded.ListingType)
	assert.True(t, entry.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestUnmarshalVectorEntryTruncated(t *testing.T) {
	entry := &core.VectorEntry{
		ListingID: "l-7",
		Vector:    []float32{0.1, 0.2, 0.3},
	}
	data := MarshalVectorEntry(entry)

	_, err := UnmarshalVectorEntry(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
