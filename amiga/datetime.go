package amiga

import "time"

// ticksPerSecond is the resolution of the ticks field of a DateTriplet.
const ticksPerSecond = 50

// epoch is the Amiga filesystem epoch: midnight, 1 January 1978.
var epoch = time.Date(1978, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateTriplet is the on-disk timestamp representation: days since the
// epoch, minutes past midnight, and ticks (1/50s) past the minute.
type DateTriplet struct {
	Days    uint32
	Minutes uint32
	Ticks   uint32
}

// Time converts the triplet to a time.Time in UTC.
func (t DateTriplet) Time() time.Time {
	d := time.Duration(t.Days) * 24 * time.Hour
	d += time.Duration(t.Minutes) * time.Minute
	d += time.Duration(t.Ticks) * time.Second / ticksPerSecond
	return epoch.Add(d)
}

// NewDateTriplet converts a time.Time to the on-disk triplet representation,
// truncating to 1/50s resolution. Times before the epoch clamp to zero.
func NewDateTriplet(t time.Time) DateTriplet {
	d := t.Sub(epoch)
	if d < 0 {
		return DateTriplet{}
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	mins := d / time.Minute
	d -= mins * time.Minute
	ticks := d * ticksPerSecond / time.Second

	return DateTriplet{
		Days:    uint32(days),
		Minutes: uint32(mins),
		Ticks:   uint32(ticks),
	}
}

// Now returns the current time as a DateTriplet.
func Now() DateTriplet {
	return NewDateTriplet(time.Now().UTC())
}
