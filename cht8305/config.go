// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cht8305

import "fmt"

// MeasurementMode selects whether a trigger converts both channels.
type MeasurementMode uint8

// TemperatureResolution is the conversion width of the temperature channel.
type TemperatureResolution uint8

// HumidityResolution is the conversion width of the humidity channel.
type HumidityResolution uint8

// AlertMode selects which channel(s) drive the alert pin.
type AlertMode uint8

const (
	// ModeSingle converts either temperature or humidity per trigger.
	ModeSingle MeasurementMode = 0
	// ModeBoth converts both channels per trigger. Device default.
	ModeBoth MeasurementMode = 1

	TempRes14Bit TemperatureResolution = 0
	TempRes11Bit TemperatureResolution = 1

	HumRes14Bit HumidityResolution = 0
	HumRes11Bit HumidityResolution = 1
	HumRes8Bit  HumidityResolution = 2

	// Alert trigger modes. The device default is AlertTempOrHumidity.
	AlertTempOrHumidity  AlertMode = 0
	AlertTemperature     AlertMode = 1
	AlertHumidity        AlertMode = 2
	AlertTempAndHumidity AlertMode = 3
)

// Configuration register bits.
const (
	cfgSoftReset        uint16 = 0x8000
	cfgClockStretch     uint16 = 0x4000
	cfgHeater           uint16 = 0x2000
	cfgMode             uint16 = 0x1000
	cfgVCCStatus        uint16 = 0x0800
	cfgTempResolution   uint16 = 0x0400
	cfgHumResolution    uint16 = 0x0300
	cfgAlertMode        uint16 = 0x00c0
	cfgAlertPending     uint16 = 0x0020
	cfgAlertHumidity    uint16 = 0x0010
	cfgAlertTemperature uint16 = 0x0008
	cfgVCCEnable        uint16 = 0x0004
	cfgReserved         uint16 = 0x0003

	shiftHumResolution = 8
	shiftAlertMode     = 6

	// Bits SetConfiguration is allowed to change. Status and reserved bits
	// are written back as read.
	cfgWritable = cfgSoftReset | cfgClockStretch | cfgHeater | cfgMode |
		cfgTempResolution | cfgHumResolution | cfgAlertMode | cfgVCCEnable
)

// Config is the decoded configuration register.
type Config struct {
	// SoftReset reboots the device to its defaults when written. The bit
	// clears itself and always reads back false.
	SoftReset    bool
	ClockStretch bool
	// Heater turns on the integrated heater. The caller owns the duty
	// cycle.
	Heater                bool
	Mode                  MeasurementMode
	TemperatureResolution TemperatureResolution
	HumidityResolution    HumidityResolution
	AlertMode             AlertMode
	// VCCEnable enables the supply voltage channel read by Voltage().
	VCCEnable bool

	// Read-only status.
	VCCStatus        bool // supply above 2.8V
	AlertPending     bool
	HumidityAlert    bool
	TemperatureAlert bool

	// Reserved holds bits 1..0 unchanged.
	Reserved uint16
}

// DecodeConfig splits a raw configuration word into its fields.
func DecodeConfig(w uint16) Config {
	return Config{
		SoftReset:             w&cfgSoftReset != 0,
		ClockStretch:          w&cfgClockStretch != 0,
		Heater:                w&cfgHeater != 0,
		Mode:                  MeasurementMode((w & cfgMode) >> 12),
		TemperatureResolution: TemperatureResolution((w & cfgTempResolution) >> 10),
		HumidityResolution:    HumidityResolution((w & cfgHumResolution) >> shiftHumResolution),
		AlertMode:             AlertMode((w & cfgAlertMode) >> shiftAlertMode),
		VCCEnable:             w&cfgVCCEnable != 0,
		VCCStatus:             w&cfgVCCStatus != 0,
		AlertPending:          w&cfgAlertPending != 0,
		HumidityAlert:         w&cfgAlertHumidity != 0,
		TemperatureAlert:      w&cfgAlertTemperature != 0,
		Reserved:              w & cfgReserved,
	}
}

// Encode returns the raw configuration word. Enumerated fields are masked
// to their width; call Validate first to reject out of range values.
func (c Config) Encode() uint16 {
	var w uint16
	w |= flag(c.SoftReset, cfgSoftReset)
	w |= flag(c.ClockStretch, cfgClockStretch)
	w |= flag(c.Heater, cfgHeater)
	w |= (uint16(c.Mode) << 12) & cfgMode
	w |= (uint16(c.TemperatureResolution) << 10) & cfgTempResolution
	w |= (uint16(c.HumidityResolution) << shiftHumResolution) & cfgHumResolution
	w |= (uint16(c.AlertMode) << shiftAlertMode) & cfgAlertMode
	w |= flag(c.VCCEnable, cfgVCCEnable)
	w |= flag(c.VCCStatus, cfgVCCStatus)
	w |= flag(c.AlertPending, cfgAlertPending)
	w |= flag(c.HumidityAlert, cfgAlertHumidity)
	w |= flag(c.TemperatureAlert, cfgAlertTemperature)
	w |= c.Reserved & cfgReserved
	return w
}

// Validate reports whether every enumerated field holds a defined value.
func (c Config) Validate() error {
	if c.Mode > ModeBoth {
		return fmt.Errorf("%w: measurement mode %d", ErrInvalidValue, c.Mode)
	}
	if c.TemperatureResolution > TempRes11Bit {
		return fmt.Errorf("%w: temperature resolution %d", ErrInvalidValue, c.TemperatureResolution)
	}
	if c.HumidityResolution > HumRes8Bit {
		return fmt.Errorf("%w: humidity resolution %d", ErrInvalidValue, c.HumidityResolution)
	}
	if c.AlertMode > AlertTempAndHumidity {
		return fmt.Errorf("%w: alert mode %d", ErrInvalidValue, c.AlertMode)
	}
	return nil
}

func flag(on bool, mask uint16) uint16 {
	if on {
		return mask
	}
	return 0
}

func (c Config) String() string {
	return fmt.Sprintf("{ClockStretch: %t, Heater: %t, Mode: %s, TemperatureResolution: %s, HumidityResolution: %s, AlertMode: %s, VCCEnable: %t, VCCStatus: %t, AlertPending: %t, HumidityAlert: %t, TemperatureAlert: %t}",
		c.ClockStretch, c.Heater, c.Mode, c.TemperatureResolution, c.HumidityResolution,
		c.AlertMode, c.VCCEnable, c.VCCStatus, c.AlertPending, c.HumidityAlert, c.TemperatureAlert)
}

func (m MeasurementMode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeBoth:
		return "both"
	}
	return fmt.Sprintf("MeasurementMode(%d)", uint8(m))
}

// Bits returns the conversion width in bits.
func (r TemperatureResolution) Bits() int {
	if r == TempRes11Bit {
		return 11
	}
	return 14
}

func (r TemperatureResolution) String() string {
	return fmt.Sprintf("%d bit", r.Bits())
}

// Bits returns the conversion width in bits, or 0 for an undefined value.
func (r HumidityResolution) Bits() int {
	switch r {
	case HumRes14Bit:
		return 14
	case HumRes11Bit:
		return 11
	case HumRes8Bit:
		return 8
	}
	return 0
}

func (r HumidityResolution) String() string {
	if b := r.Bits(); b != 0 {
		return fmt.Sprintf("%d bit", b)
	}
	return fmt.Sprintf("HumidityResolution(%d)", uint8(r))
}

func (m AlertMode) String() string {
	switch m {
	case AlertTempOrHumidity:
		return "temperature or humidity"
	case AlertTemperature:
		return "temperature"
	case AlertHumidity:
		return "humidity"
	case AlertTempAndHumidity:
		return "temperature and humidity"
	}
	return fmt.Sprintf("AlertMode(%d)", uint8(m))
}
