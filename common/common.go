// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, big-endian register word handling and unit conversions.
package common

import "periph.io/x/conn/v3/physic"

// Word returns the big-endian 16 bit value held in the first two bytes of b.
func Word(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// PutWord stores v in the first two bytes of b, most significant byte first.
func PutWord(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v & 0xff)
}

// Celsius returns the temperature in degrees Celsius.
func Celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Celsius)
}

// FromCelsius converts degrees Celsius to a physic.Temperature.
func FromCelsius(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius))
}

// Percent returns the relative humidity as a percentage.
func Percent(h physic.RelativeHumidity) float64 {
	return float64(h) / float64(physic.PercentRH)
}

// FromPercent converts a percentage to a physic.RelativeHumidity.
func FromPercent(p float64) physic.RelativeHumidity {
	return physic.RelativeHumidity(p * float64(physic.PercentRH))
}
