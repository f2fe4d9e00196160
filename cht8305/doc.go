// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cht8305 provides a driver for the Sensylink CHT8305 I²C
// temperature and humidity sensor.
//
// Range: -40°C - 125°C, 0 - 100 %RH
//
// Resolution: 14 bits for both channels (11 or 8 bits selectable)
//
// A measurement is triggered by pointing the device at the temperature
// register. The driver waits Opts.ConversionTime and then fetches both
// channels in one 4 byte read. Decoded values are cached; Temperature() and
// Humidity() return the cached value plus the calibration offset and never
// touch the bus. Use LastRead() to tell a stale reading from no reading.
//
// The configuration register is never cached: every accessor reads the
// device, and every setter is a read-modify-write of a single field.
//
// The device address is selected with the AD0/AD1 pins, 0x40 to 0x43.
//
// Refer to the Sensylink CHT8305 datasheet for register details.
//
// A command line tool is available in cmd/cht8305.
package cht8305
