// Package pitch maps between note indices, frequencies and MIDI keys.
//
// Note index 0 is A0 at 55 Hz; every index is one equal-tempered semitone.
package pitch

import (
	"math"
	"strconv"
)

// Base is the frequency of note index 0.
const Base = 55.0

// MIDI reference pitch: key 69 is A at 440 Hz.
const (
	midiA4Key  = 69
	midiA4Freq = 440.0
)

var noteNames = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"} //nolint:gochecknoglobals // lookup table

// NoteFrequency returns Base × 2^(n/12).
func NoteFrequency(n int) float64 {
	return Base * math.Pow(2, float64(n)/12)
}

// NoteIndex returns the fractional note index of freq. Non-positive
// frequencies yield -Inf or NaN.
func NoteIndex(freq float64) float64 {
	return math.Log2(freq/Base) * 12
}

// IsSemitone reports whether note n falls on a black key.
func IsSemitone(n int) bool {
	switch mod12(n) {
	case 1, 4, 6, 9, 11:
		return true
	}
	return false
}

// NoteName returns the pitch class of n ("A", "C#", ...).
func NoteName(n int) string {
	return noteNames[mod12(n)]
}

// Label returns the pitch class followed by the octave counted from A0 ("A0", "C#1").
func Label(n int) string {
	return NoteName(n) + strconv.Itoa(floorDiv(n, 12))
}

// MIDIKey converts freq to the nearest MIDI key number.
// ok is false when freq is not a positive finite value or falls outside 0..127.
func MIDIKey(freq float64) (key uint8, ok bool) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return 0, false
	}
	k := math.Round(midiA4Key + 12*math.Log2(freq/midiA4Freq))
	if k < 0 || k > 127 {
		return 0, false
	}
	return uint8(k), true
}

// Correct pulls freq toward the nearest equal-tempered note. Strength 0
// leaves freq unchanged, 1 snaps it fully; values above 1 are treated as 1.
func Correct(freq, strength float64) float64 {
	if !(freq > 0) {
		return freq
	}
	corrected := NoteFrequency(int(math.Round(NoteIndex(freq))))
	oldFactor := math.Max(0, 1-strength)
	newFactor := math.Min(1, strength)
	return corrected*newFactor + freq*oldFactor
}

func mod12(n int) int {
	m := n % 12
	if m < 0 {
		m += 12
	}
	return m
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
