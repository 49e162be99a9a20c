package timex

import (
	"math"
	"time"
)

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// TicksToDuration converts a tick count at freqHz into wall time.
func TicksToDuration(ticks uint32, freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(uint64(ticks) * 1_000_000_000 / uint64(freqHz))
}

// DurationToTicks converts d into ticks at freqHz, rounding to nearest.
// Negative durations yield 0; results beyond uint32 saturate.
func DurationToTicks(d time.Duration, freqHz uint32) uint32 {
	if d <= 0 || freqHz == 0 {
		return 0
	}
	secs, frac := uint64(d)/1_000_000_000, uint64(d)%1_000_000_000
	if secs > math.MaxUint32/uint64(freqHz) {
		return math.MaxUint32
	}
	ticks := secs*uint64(freqHz) + (frac*uint64(freqHz)+500_000_000)/1_000_000_000
	if ticks > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ticks)
}
