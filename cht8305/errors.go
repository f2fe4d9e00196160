// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cht8305

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned by NewI2C for an address the device
	// cannot be strapped to.
	ErrInvalidAddress = errors.New("cht8305: invalid address")
	// ErrBus wraps every transport failure: no acknowledge, arbitration
	// loss or a short transfer.
	ErrBus = errors.New("cht8305: i2c transaction failed")
	// ErrNotConnected is returned when the presence probe is not
	// acknowledged.
	ErrNotConnected = errors.New("cht8305: device not connected")
	// ErrNoReading is returned when cached values are requested before a
	// read ever succeeded.
	ErrNoReading = errors.New("cht8305: no successful read")
	// ErrOutOfRange is returned for alert levels the device cannot encode.
	ErrOutOfRange = errors.New("cht8305: value out of range")
	// ErrInvalidValue is returned for enumerated settings outside their
	// defined values.
	ErrInvalidValue = errors.New("cht8305: invalid value")
)

func busError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBus, op, err)
}
