// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cht8305

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GermanBionicSystems/sensors/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the address with AD0 and AD1 tied low.
	DefaultAddress uint16 = 0x40
	// MinAddress and MaxAddress bound the addresses the device can be
	// strapped to.
	MinAddress uint16 = 0x40
	MaxAddress uint16 = 0x43

	// ManufacturerID is the value the manufacturer register is expected to
	// hold.
	ManufacturerID uint16 = 0x5959

	// DefaultConversionTime covers a 14 bit conversion of both channels.
	DefaultConversionTime = 20 * time.Millisecond

	// Register addresses.
	regTemperature  byte = 0x00
	regHumidity     byte = 0x01
	regConfig       byte = 0x02
	regAlert        byte = 0x03
	regVoltage      byte = 0x04
	regManufacturer byte = 0xfe
	regVersion      byte = 0xff

	// Magic numbers for count to value conversions.
	temperatureOffset float64 = -40.0
	temperatureScalar float64 = 165.0
	humidityScalar    float64 = 100.0
	scaleDivisor      float64 = 65536.0
	voltageScalar     float64 = 5.0
	voltageDivisor    float64 = 32768.0

	minSampleInterval = 10 * time.Millisecond

	// The lowest temperature an alert level may be set to.
	MinimumTemperature physic.Temperature = physic.ZeroCelsius - 40*physic.Kelvin
	// The highest temperature an alert level may be set to.
	MaximumTemperature physic.Temperature = physic.ZeroCelsius + 125*physic.Kelvin
	// The lowest humidity an alert level may be set to.
	MinimumHumidity physic.RelativeHumidity = 0
	// The highest humidity an alert level may be set to.
	MaximumHumidity physic.RelativeHumidity = 100 * physic.PercentRH
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Address is the I²C address of the sensor. Leave 0 to use
	// DefaultAddress.
	Address uint16
	// ConversionTime is the delay between triggering a measurement and
	// fetching it. 0 means no delay.
	ConversionTime time.Duration
	// TemperatureOffset is added to every temperature returned.
	TemperatureOffset physic.Temperature
	// HumidityOffset is added to every humidity returned.
	HumidityOffset physic.RelativeHumidity
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Address:        DefaultAddress,
	ConversionTime: DefaultConversionTime,
}

// Dev represents a CHT8305 sensor.
type Dev struct {
	d    *i2c.Dev
	opts Opts

	mu          sync.Mutex
	shutdown    chan struct{}
	tempOffset  physic.Temperature
	humOffset   physic.RelativeHumidity
	temperature physic.Temperature
	humidity    physic.RelativeHumidity
	lastRead    time.Time
}

// NewI2C returns a CHT8305 sensor using the specified bus. If opts is nil,
// DefaultOpts is used.
//
// The device is probed after the address is stored. If it does not
// acknowledge, the returned error wraps ErrNotConnected and the returned
// Dev is still usable, so the caller can retry the probe with IsConnected.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Address == 0 {
		o.Address = DefaultAddress
	}
	if o.Address < MinAddress || o.Address > MaxAddress {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidAddress, o.Address)
	}
	dev := &Dev{
		d:          &i2c.Dev{Bus: b, Addr: o.Address},
		opts:       o,
		tempOffset: o.TemperatureOffset,
		humOffset:  o.HumidityOffset,
		// The zero reading decodes as 0°C, not 0K.
		temperature: physic.ZeroCelsius,
	}
	if !dev.IsConnected() {
		return dev, fmt.Errorf("%w: 0x%02x on %s", ErrNotConnected, o.Address, b)
	}
	return dev, nil
}

// IsConnected reads the manufacturer register and reports whether the
// device acknowledged. Cached readings are not affected.
func (dev *Dev) IsConnected() bool {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	// Some buses, sysfs included, complete an empty transaction without
	// addressing the device.
	_, err := dev.readWord(regManufacturer)
	return err == nil
}

// Address returns the I²C address the driver talks to.
func (dev *Dev) Address() uint16 {
	return dev.d.Addr
}

// countToTemperature converts the raw temperature word.
func countToTemperature(count uint16) physic.Temperature {
	f := float64(count)/scaleDivisor*temperatureScalar + temperatureOffset
	return physic.ZeroCelsius + physic.Temperature(f*float64(physic.Celsius))
}

// countToHumidity converts the raw humidity word.
func countToHumidity(count uint16) physic.RelativeHumidity {
	f := float64(count) / scaleDivisor * humidityScalar
	return physic.RelativeHumidity(f * float64(physic.PercentRH))
}

// temperatureToCount is the inverse of countToTemperature, rounded to the
// nearest count and clamped to the register width.
func temperatureToCount(t physic.Temperature) uint16 {
	return clampCount((common.Celsius(t) - temperatureOffset) / temperatureScalar * scaleDivisor)
}

// humidityToCount is the inverse of countToHumidity.
func humidityToCount(h physic.RelativeHumidity) uint16 {
	return clampCount(common.Percent(h) / humidityScalar * scaleDivisor)
}

func clampCount(f float64) uint16 {
	f = math.Round(f)
	if f <= 0 {
		return 0
	}
	if f >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(f)
}

// Read triggers a measurement, waits for the conversion and fetches both
// channels. On failure the cached values and LastRead are left untouched
// and the returned error wraps ErrBus.
func (dev *Dev) Read() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.read()
}

func (dev *Dev) read() error {
	// Pointing at the temperature register starts the conversion.
	if err := dev.d.Tx([]byte{regTemperature}, nil); err != nil {
		return busError("trigger", err)
	}
	if dev.opts.ConversionTime > 0 {
		time.Sleep(dev.opts.ConversionTime)
	}
	r := make([]byte, 4)
	if err := dev.d.Tx(nil, r); err != nil {
		return busError("fetch", err)
	}
	dev.temperature = countToTemperature(common.Word(r))
	dev.humidity = countToHumidity(common.Word(r[2:]))
	dev.lastRead = time.Now()
	return nil
}

// LastRead returns the time of the last successful Read. It is the zero
// time if no read ever succeeded.
func (dev *Dev) LastRead() time.Time {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.lastRead
}

// Temperature returns the last temperature read plus the temperature
// offset. It does not access the bus; before the first successful Read it
// returns 0°C plus the offset.
func (dev *Dev) Temperature() physic.Temperature {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.temperature + dev.tempOffset
}

// Humidity returns the last humidity read plus the humidity offset. It does
// not access the bus.
func (dev *Dev) Humidity() physic.RelativeHumidity {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.humidity + dev.humOffset
}

// Reading fills env with the cached, offset adjusted values. It returns
// ErrNoReading if no read ever succeeded.
func (dev *Dev) Reading(env *physic.Env) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.lastRead.IsZero() {
		return ErrNoReading
	}
	dev.fill(env)
	return nil
}

func (dev *Dev) fill(env *physic.Env) {
	env.Temperature = dev.temperature + dev.tempOffset
	env.Humidity = dev.humidity + dev.humOffset
	env.Pressure = 0
}

// SetTemperatureOffset sets the additive temperature correction. It applies
// to cached values immediately.
func (dev *Dev) SetTemperatureOffset(offset physic.Temperature) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.tempOffset = offset
}

// TemperatureOffset returns the additive temperature correction.
func (dev *Dev) TemperatureOffset() physic.Temperature {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.tempOffset
}

// SetHumidityOffset sets the additive humidity correction. Large offsets
// can push results outside 0-100 %RH; they are not clamped.
func (dev *Dev) SetHumidityOffset(offset physic.RelativeHumidity) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.humOffset = offset
}

// HumidityOffset returns the additive humidity correction.
func (dev *Dev) HumidityOffset() physic.RelativeHumidity {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.humOffset
}

// Sense reads temperature and humidity from the device and writes the
// offset adjusted values to env. Implements physic.SenseEnv.
func (dev *Dev) Sense(env *physic.Env) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if err := dev.read(); err != nil {
		return err
	}
	dev.fill(env)
	return nil
}

// SenseContinuous reads from the device every interval and writes the value
// to the returned channel. Implements physic.SenseEnv. Failed reads are
// skipped. To terminate the continuous read, call Halt().
func (dev *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		return nil, errors.New("cht8305: SenseContinuous already running")
	}
	if interval < minSampleInterval || interval < dev.opts.ConversionTime {
		return nil, fmt.Errorf("cht8305: sample interval %s is shorter than the conversion time", interval)
	}
	shutdown := make(chan struct{})
	dev.shutdown = shutdown
	ch := make(chan physic.Env, 16)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-shutdown:
				return
			case <-ticker.C:
				env := physic.Env{}
				if err := dev.Sense(&env); err == nil {
					select {
					case ch <- env:
					case <-shutdown:
						return
					}
				}
			}
		}
	}()
	return ch, nil
}

// Precision returns the step between two counts at full resolution.
// Implements physic.SenseEnv.
func (dev *Dev) Precision(env *physic.Env) {
	env.Temperature = physic.Temperature(math.Round(temperatureScalar / scaleDivisor * float64(physic.Celsius)))
	env.Humidity = physic.RelativeHumidity(math.Round(humidityScalar / scaleDivisor * float64(physic.PercentRH)))
	env.Pressure = 0
}

// Halt stops a running SenseContinuous. Implements conn.Resource. The bus
// is not closed; it belongs to the caller.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		close(dev.shutdown)
		dev.shutdown = nil
	}
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("cht8305: %s", dev.d.String())
}

// readWord reads a 16 bit register.
func (dev *Dev) readWord(reg byte) (uint16, error) {
	r := make([]byte, 2)
	if err := dev.d.Tx([]byte{reg}, r); err != nil {
		return 0, busError(fmt.Sprintf("read register 0x%02x", reg), err)
	}
	return common.Word(r), nil
}

// writeWord writes a 16 bit register.
func (dev *Dev) writeWord(reg byte, value uint16) error {
	w := []byte{reg, 0, 0}
	common.PutWord(w[1:], value)
	if err := dev.d.Tx(w, nil); err != nil {
		return busError(fmt.Sprintf("write register 0x%02x", reg), err)
	}
	return nil
}

// ConfigRegister returns the raw configuration register.
func (dev *Dev) ConfigRegister() (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.readWord(regConfig)
}

// SetConfigRegister writes the raw configuration register.
func (dev *Dev) SetConfigRegister(value uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.writeWord(regConfig, value)
}

// Configuration returns the decoded configuration register.
func (dev *Dev) Configuration() (Config, error) {
	w, err := dev.ConfigRegister()
	if err != nil {
		return Config{}, err
	}
	return DecodeConfig(w), nil
}

// SetConfiguration applies the writable fields of cfg. Status and reserved
// bits keep the value the device reports.
func (dev *Dev) SetConfiguration(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return dev.updateConfig(cfgWritable, cfg.Encode())
}

// updateConfig replaces the bits selected by mask with those of value.
func (dev *Dev) updateConfig(mask, value uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	current, err := dev.readWord(regConfig)
	if err != nil {
		return err
	}
	return dev.writeWord(regConfig, (current&^mask)|(value&mask))
}

// configBits returns the configuration bits selected by mask, shifted down
// by shift.
func (dev *Dev) configBits(mask uint16, shift uint) (uint16, error) {
	w, err := dev.ConfigRegister()
	if err != nil {
		return 0, err
	}
	return (w & mask) >> shift, nil
}

func (dev *Dev) configFlag(mask uint16) (bool, error) {
	v, err := dev.configBits(mask, 0)
	return v != 0, err
}

// SoftReset reboots the device to its default configuration. Cached
// readings are kept.
func (dev *Dev) SoftReset() error {
	return dev.updateConfig(cfgSoftReset, cfgSoftReset)
}

// SetClockStretch enables or disables I²C clock stretching.
func (dev *Dev) SetClockStretch(on bool) error {
	return dev.updateConfig(cfgClockStretch, flag(on, cfgClockStretch))
}

// ClockStretch reports whether I²C clock stretching is enabled.
func (dev *Dev) ClockStretch() (bool, error) {
	return dev.configFlag(cfgClockStretch)
}

// SetHeater turns the integrated heater on or off. The heater raises the
// sensor temperature; the caller is responsible for turning it off again.
func (dev *Dev) SetHeater(on bool) error {
	return dev.updateConfig(cfgHeater, flag(on, cfgHeater))
}

// Heater reports whether the heater is on.
func (dev *Dev) Heater() (bool, error) {
	return dev.configFlag(cfgHeater)
}

// SetMeasurementMode selects single or dual channel conversion.
func (dev *Dev) SetMeasurementMode(mode MeasurementMode) error {
	if mode > ModeBoth {
		return fmt.Errorf("%w: measurement mode %d", ErrInvalidValue, mode)
	}
	return dev.updateConfig(cfgMode, flag(mode == ModeBoth, cfgMode))
}

// MeasurementMode returns the conversion mode.
func (dev *Dev) MeasurementMode() (MeasurementMode, error) {
	v, err := dev.configBits(cfgMode, 12)
	return MeasurementMode(v), err
}

// VCCStatus reports whether the supply is above 2.8V.
func (dev *Dev) VCCStatus() (bool, error) {
	return dev.configFlag(cfgVCCStatus)
}

// SetTemperatureResolution selects the temperature conversion width.
func (dev *Dev) SetTemperatureResolution(res TemperatureResolution) error {
	if res > TempRes11Bit {
		return fmt.Errorf("%w: temperature resolution %d", ErrInvalidValue, res)
	}
	return dev.updateConfig(cfgTempResolution, uint16(res)<<10)
}

// TemperatureResolution returns the temperature conversion width.
func (dev *Dev) TemperatureResolution() (TemperatureResolution, error) {
	v, err := dev.configBits(cfgTempResolution, 10)
	return TemperatureResolution(v), err
}

// SetHumidityResolution selects the humidity conversion width.
func (dev *Dev) SetHumidityResolution(res HumidityResolution) error {
	if res > HumRes8Bit {
		return fmt.Errorf("%w: humidity resolution %d", ErrInvalidValue, res)
	}
	return dev.updateConfig(cfgHumResolution, uint16(res)<<shiftHumResolution)
}

// HumidityResolution returns the humidity conversion width.
func (dev *Dev) HumidityResolution() (HumidityResolution, error) {
	v, err := dev.configBits(cfgHumResolution, shiftHumResolution)
	return HumidityResolution(v), err
}

// SetVCCEnable enables or disables the supply voltage channel.
func (dev *Dev) SetVCCEnable(on bool) error {
	return dev.updateConfig(cfgVCCEnable, flag(on, cfgVCCEnable))
}

// VCCEnable reports whether the supply voltage channel is enabled.
func (dev *Dev) VCCEnable() (bool, error) {
	return dev.configFlag(cfgVCCEnable)
}

// SetAlertTriggerMode selects which channel(s) raise the alert.
func (dev *Dev) SetAlertTriggerMode(mode AlertMode) error {
	if mode > AlertTempAndHumidity {
		return fmt.Errorf("%w: alert mode %d", ErrInvalidValue, mode)
	}
	return dev.updateConfig(cfgAlertMode, uint16(mode)<<shiftAlertMode)
}

// AlertTriggerMode returns the alert trigger mode.
func (dev *Dev) AlertTriggerMode() (AlertMode, error) {
	v, err := dev.configBits(cfgAlertMode, shiftAlertMode)
	return AlertMode(v), err
}

// AlertPending reports the alert pending status bit.
func (dev *Dev) AlertPending() (bool, error) {
	return dev.configFlag(cfgAlertPending)
}

// HumidityAlert reports the humidity alert status bit.
func (dev *Dev) HumidityAlert() (bool, error) {
	return dev.configFlag(cfgAlertHumidity)
}

// TemperatureAlert reports the temperature alert status bit.
func (dev *Dev) TemperatureAlert() (bool, error) {
	return dev.configFlag(cfgAlertTemperature)
}

// The alert register holds the 7 most significant bits of the humidity
// threshold in bits 15..9 and the 9 most significant bits of the
// temperature threshold in bits 8..0.
func encodeAlert(t physic.Temperature, h physic.RelativeHumidity) uint16 {
	return (humidityToCount(h) & 0xfe00) | temperatureToCount(t)>>7
}

func decodeAlert(w uint16) (physic.Temperature, physic.RelativeHumidity) {
	return countToTemperature(w << 7), countToHumidity(w & 0xfe00)
}

// SetAlertLevels sets the temperature and humidity thresholds above which
// the device raises an alert. Both values must be supplied; use
// MaximumTemperature and MaximumHumidity to effectively disable a channel.
//
// Temperatures outside [-40°C, 125°C] and humidities outside [0, 100] %RH
// return ErrOutOfRange. Offsets are not applied.
func (dev *Dev) SetAlertLevels(t physic.Temperature, h physic.RelativeHumidity) error {
	if t < MinimumTemperature || t > MaximumTemperature {
		return fmt.Errorf("%w: alert temperature %s", ErrOutOfRange, t)
	}
	if h < MinimumHumidity || h > MaximumHumidity {
		return fmt.Errorf("%w: alert humidity %s", ErrOutOfRange, h)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.writeWord(regAlert, encodeAlert(t, h))
}

// AlertLevels returns the thresholds stored in the device. They are
// truncated to the register precision, about 1.3°C and 0.8 %RH.
func (dev *Dev) AlertLevels() (physic.Temperature, physic.RelativeHumidity, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	w, err := dev.readWord(regAlert)
	if err != nil {
		return 0, 0, err
	}
	t, h := decodeAlert(w)
	return t, h, nil
}

// Voltage returns the supply voltage. The channel must be enabled with
// SetVCCEnable first.
func (dev *Dev) Voltage() (physic.ElectricPotential, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	w, err := dev.readWord(regVoltage)
	if err != nil {
		return 0, err
	}
	return countToVoltage(w), nil
}

func countToVoltage(count uint16) physic.ElectricPotential {
	return physic.ElectricPotential(float64(count) * voltageScalar / voltageDivisor * float64(physic.Volt))
}

// Manufacturer returns the manufacturer ID, expected to be ManufacturerID.
func (dev *Dev) Manufacturer() (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.readWord(regManufacturer)
}

// VersionID returns the device version ID.
func (dev *Dev) VersionID() (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.readWord(regVersion)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
