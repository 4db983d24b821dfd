// internal/override/conversion.go
package override

import (
	"errors"
	"fmt"
	"math"

	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

// ErrZeroScaling is returned when a linear conversion divides by a zero factor.
var ErrZeroScaling = errors.New("override: conversion factor is zero")

// Kind selects a conversion strategy.
type Kind int

const (
	KindIdentity Kind = iota
	KindLinear
	KindCustom
)

// Source selects which device scaling a linear conversion divides by.
type Source int

const (
	SourceNone Source = iota
	SourceVoltage
	SourceCurrent
)

// Conversion turns a user-unit value into a raw register value.
// It is a plain value: it carries no reference to the reader or the poller.
type Conversion struct {
	Kind   Kind
	Scale  float64
	Offset float64
	Source Source
	Fn     func(user float64, sc telemetry.Scaling) float64
}

// Identity writes the user value as the raw value.
func Identity() Conversion {
	return Conversion{Kind: KindIdentity}
}

// Linear computes raw = (user - offset) / (scale * source * 2^-15).
// With SourceNone the source factor is 1.
func Linear(scale, offset float64, src Source) Conversion {
	return Conversion{Kind: KindLinear, Scale: scale, Offset: offset, Source: src}
}

// Custom delegates to fn. Custom conversions always receive the current scaling.
func Custom(fn func(user float64, sc telemetry.Scaling) float64) Conversion {
	return Conversion{Kind: KindCustom, Fn: fn}
}

// NeedsScaling reports whether Raw reads the device scaling.
func (c Conversion) NeedsScaling() bool {
	switch c.Kind {
	case KindLinear:
		return c.Source != SourceNone
	case KindCustom:
		return true
	}
	return false
}

// Raw converts user units to a register word.
func (c Conversion) Raw(user float64, sc telemetry.Scaling) (uint16, error) {
	var v float64

	switch c.Kind {
	case KindIdentity:
		v = user
	case KindLinear:
		factor := c.Scale * telemetry.ScalingConstant
		switch c.Source {
		case SourceVoltage:
			factor *= sc.Voltage
		case SourceCurrent:
			factor *= sc.Current
		}
		if factor == 0 {
			return 0, ErrZeroScaling
		}
		v = (user - c.Offset) / factor
	case KindCustom:
		if c.Fn == nil {
			return 0, errors.New("override: custom conversion without function")
		}
		v = c.Fn(user, sc)
	default:
		return 0, fmt.Errorf("override: unknown conversion kind %d", c.Kind)
	}

	return encode(v)
}

// encode rounds to the nearest word. Negative values are stored as 16-bit
// two's complement; values outside the signed/unsigned 16-bit span are clamped.
func encode(v float64) (uint16, error) {
	if math.IsNaN(v) {
		return 0, errors.New("override: conversion produced NaN")
	}

	r := math.Round(v)
	if r < math.MinInt16 {
		r = math.MinInt16
	}
	if r > math.MaxUint16 {
		r = math.MaxUint16
	}

	if r < 0 {
		return uint16(int16(r)), nil
	}
	return uint16(r), nil
}
