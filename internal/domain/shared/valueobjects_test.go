package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserID(t *testing.T) {
	id, err := NewUserID("7ed99bd0-87b2-4dbb-a97b-596c3f29c49b")
	require.NoError(t, err)
	assert.True(t, id.IsValid())
	assert.Equal(t, "7ed99bd0-87b2-4dbb-a97b-596c3f29c49b", id.String())

	for _, input := range []string{"", "abc", "7ed99bd0-87b2-4dbb-a97b"} {
		_, err := NewUserID(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestNewCoordinates(t *testing.T) {
	c, err := NewCoordinates(43.238949, 76.889709)
	require.NoError(t, err)
	assert.Equal(t, 43.238949, c.Latitude)

	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude too high", 90.1, 0},
		{"latitude too low", -90.1, 0},
		{"longitude too high", 0, 180.1},
		{"longitude too low", 0, -180.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinates(tt.lat, tt.lon)
			assert.Error(t, err)
		})
	}

	t.Run("poles and antimeridian are valid", func(t *testing.T) {
		for _, pair := range [][2]float64{{90, 180}, {-90, -180}, {0, 0}} {
			_, err := NewCoordinates(pair[0], pair[1])
			assert.NoError(t, err)
		}
	})
}

func TestBoundingBox_Contains(t *testing.T) {
	origin, err := NewCoordinates(10.0, 20.0)
	require.NoError(t, err)
	box, err := NewBoundingBox(origin, 0.1)
	require.NoError(t, err)

	point := func(lat, lon float64) Coordinates {
		c, err := NewCoordinates(lat, lon)
		require.NoError(t, err)
		return c
	}

	assert.True(t, box.Contains(point(10.0, 20.0)), "origin")
	assert.True(t, box.Contains(point(10.05, 19.95)), "interior")
	assert.True(t, box.Contains(point(10.1, 20.1)), "corner is inclusive")
	assert.True(t, box.Contains(point(9.9, 20.0)), "edge is inclusive")

	assert.False(t, box.Contains(point(10.100001, 20.0)))
	assert.False(t, box.Contains(point(10.0, 19.899999)))
	assert.False(t, box.Contains(point(10.5, 20.5)))
}

func TestNewBoundingBox_RejectsNonPositiveDelta(t *testing.T) {
	origin, err := NewCoordinates(10.0, 20.0)
	require.NoError(t, err)

	_, err = NewBoundingBox(origin, 0)
	assert.Error(t, err)
	_, err = NewBoundingBox(origin, -0.1)
	assert.Error(t, err)
}
