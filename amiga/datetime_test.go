package amiga

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTripletRoundTrip(t *testing.T) {
	want := time.Date(2001, time.March, 5, 13, 37, 12, 0, time.UTC)
	triplet := NewDateTriplet(want)
	got := triplet.Time()

	// Resolution is 1/50s; compare with that tolerance.
	assert.WithinDuration(t, want, got, 20*time.Millisecond)
}

func TestDateTripletEpoch(t *testing.T) {
	triplet := NewDateTriplet(epoch)
	assert.Zero(t, triplet.Days)
	assert.Zero(t, triplet.Minutes)
	assert.Zero(t, triplet.Ticks)
}

func TestDateTripletBeforeEpochClampsToZero(t *testing.T) {
	triplet := NewDateTriplet(epoch.Add(-time.Hour))
	assert.Zero(t, triplet)
}
