package engine

import "math"

// This file is the event-list client API surface (§6), the contract
// the out-of-scope MIDI/live-coding helper layer is written against.
// now/tempo/set_tempo/add_events/event map directly onto EventList and
// Engine methods already defined elsewhere; NextBeat/Beats/BeatMod are
// the helpers the spec calls out as "defined on top of the above, not
// part of the core".

// NextBeat returns the number of beats from now until the next
// boundary of grid (ceil(now/grid)*grid - now), the building block a
// temporally-recursive event uses to reschedule itself exactly once
// per grid without drifting or backing up (§8 scenario 6).
func NextBeat(now, grid float64) float64 {
	if grid == 0 {
		return 0
	}
	return math.Ceil(now/grid)*grid - now
}

// Beats converts n beats to seconds at the given tempo (beats per
// minute).
func Beats(n, tempoBPM float64) float64 {
	return n * 60 / tempoBPM
}

// BeatMod returns t modulo m, rounded to the nearest integer beat —
// useful for deriving a repeating phase from an ever-increasing beat
// counter.
func BeatMod(t, m float64) float64 {
	if m == 0 {
		return 0
	}
	return math.Round(math.Mod(t, m))
}
