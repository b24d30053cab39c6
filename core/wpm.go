// Morse element timing.
// Speed is expressed in words per minute using the standard "PARIS" word of
// 50 units, so one unit lasts 60000 / (wpm * 50) milliseconds. Per-element
// scale factors stretch or compress individual element types relative to
// that unit without changing the nominal speed.
package core

import "math"

// WPM is a keying speed in words per minute.
type WPM float32

// ElementScale is a per-element duration multiplier.
type ElementScale float32

const (
	WPMMin     WPM = 1
	WPMMax     WPM = 100
	WPMDefault WPM = 18

	ElementScaleMin     ElementScale = 0.1
	ElementScaleMax     ElementScale = 10
	ElementScaleDefault ElementScale = 1

	// wordUnitLength is the length of the reference word "PARIS" in units.
	wordUnitLength = 50

	msecPerMinute = 60000
)

// Element identifies one kind of Morse element.
type Element uint8

const (
	ElementDot Element = iota
	ElementDash
	ElementElementSpace
	ElementLetterSpace
	ElementWordSpace

	// ElementCount bounds the storable element kinds; the sentinels below
	// never index an ElementTicks or ElementScales array.
	ElementCount

	// ElementNone marks that no element is in flight.
	ElementNone

	// ElementUnknown marks keying of indeterminate length, such as a held
	// straight key.
	ElementUnknown
)

// Keyed reports whether el energizes the key output.
func (e Element) Keyed() bool {
	return e == ElementDot || e == ElementDash
}

// units returns the element's nominal length in timing units.
func (e Element) units() float64 {
	switch e {
	case ElementDot, ElementElementSpace:
		return 1
	case ElementDash, ElementLetterSpace:
		return 3
	case ElementWordSpace:
		return 7
	}
	FailCode(FailCodeInvalidElement)
	return 0
}

// ElementScales holds one scale factor per element kind.
type ElementScales [ElementCount]ElementScale

// DefaultElementScales returns unity scales for every element kind.
func DefaultElementScales() ElementScales {
	var s ElementScales
	for i := range s {
		s[i] = ElementScaleDefault
	}
	return s
}

// ElementTicks holds one duration per element kind.
type ElementTicks [ElementCount]Tick

// TicksForWPM computes the tick duration of every element kind at the given
// speed. Durations round to the nearest tick rather than truncating, so the
// dot/dash ratio stays within half a tick of 1:3 at any speed. Inputs are
// expected to be pre-validated by the configuration layer; out-of-range
// values here are a programming error and halt the firmware.
func TicksForWPM(wpm WPM, scales ElementScales) ElementTicks {
	if wpm < WPMMin || wpm > WPMMax {
		FailCode(FailCodeInvalidConfig)
	}
	for _, s := range scales {
		if s < ElementScaleMin || s > ElementScaleMax {
			FailCode(FailCodeInvalidConfig)
		}
	}

	unitMsec := msecPerMinute / (float64(wpm) * wordUnitLength)

	var ticks ElementTicks
	for el := Element(0); el < ElementCount; el++ {
		msec := math.Round(el.units() * unitMsec * float64(scales[el]))
		ticks[el] = Tick(msec) * TicksPerMillisecond
	}
	return ticks
}
