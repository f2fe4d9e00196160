// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// cht8305 reads a CHT8305 temperature/humidity sensor and optionally
// changes its configuration.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GermanBionicSystems/sensors/cht8305"
	"github.com/GermanBionicSystems/sensors/common"
	"github.com/GermanBionicSystems/sensors/envcard"
	"github.com/GermanBionicSystems/sensors/termgauge"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

type config struct {
	bus        string
	addr       uint
	tempOffset float64
	humOffset  float64
	heater     string
	hres       int
	tres       int
	alertTemp  float64
	alertHum   float64
	alertSet   bool
	reset      bool
	interval   time.Duration
	count      int
	gauge      string
	png        string
	verbose    bool
}

func parseFlags(args []string) (*config, error) {
	c := &config{}
	fs := flag.NewFlagSet("cht8305", flag.ContinueOnError)
	fs.StringVar(&c.bus, "bus", "", "Name of the I²C bus")
	fs.UintVar(&c.addr, "addr", uint(cht8305.DefaultAddress), "I²C address of the sensor (0x40-0x43)")
	fs.Float64Var(&c.tempOffset, "temp-offset", 0, "temperature offset in °C")
	fs.Float64Var(&c.humOffset, "hum-offset", 0, "humidity offset in %rH")
	fs.StringVar(&c.heater, "heater", "", "turn the heater on or off")
	fs.IntVar(&c.hres, "hres", -1, "humidity resolution: 14, 11 or 8 bits")
	fs.IntVar(&c.tres, "tres", -1, "temperature resolution: 14 or 11 bits")
	fs.Float64Var(&c.alertTemp, "alert-temp", 125, "alert temperature level in °C; both levels are written together")
	fs.Float64Var(&c.alertHum, "alert-hum", 100, "alert humidity level in %rH; both levels are written together")
	fs.BoolVar(&c.reset, "reset", false, "soft reset the sensor before anything else")
	fs.DurationVar(&c.interval, "interval", 0, "read continuously at this interval")
	fs.IntVar(&c.count, "count", 0, "stop after this many continuous readings, 0 for no limit; gives up when the sensor stops answering")
	fs.StringVar(&c.gauge, "gauge", "auto", "draw terminal gauges: auto, on or off")
	fs.StringVar(&c.png, "png", "", "write the last reading to this PNG file")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.addr < uint(cht8305.MinAddress) || c.addr > uint(cht8305.MaxAddress) {
		return nil, fmt.Errorf("-addr must be within 0x%02x-0x%02x, got 0x%x", cht8305.MinAddress, cht8305.MaxAddress, c.addr)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "alert-temp" || f.Name == "alert-hum" {
			c.alertSet = true
		}
	})
	if c.heater != "" && c.heater != "on" && c.heater != "off" {
		return nil, fmt.Errorf("-heater must be on or off, got %q", c.heater)
	}
	if c.gauge != "auto" && c.gauge != "on" && c.gauge != "off" {
		return nil, fmt.Errorf("-gauge must be auto, on or off, got %q", c.gauge)
	}
	return c, nil
}

func humidityResolution(bits int) (cht8305.HumidityResolution, error) {
	switch bits {
	case 14:
		return cht8305.HumRes14Bit, nil
	case 11:
		return cht8305.HumRes11Bit, nil
	case 8:
		return cht8305.HumRes8Bit, nil
	}
	return 0, fmt.Errorf("unsupported humidity resolution %d", bits)
}

func temperatureResolution(bits int) (cht8305.TemperatureResolution, error) {
	switch bits {
	case 14:
		return cht8305.TempRes14Bit, nil
	case 11:
		return cht8305.TempRes11Bit, nil
	}
	return 0, fmt.Errorf("unsupported temperature resolution %d", bits)
}

// configure applies the settings requested on the command line.
func configure(dev *cht8305.Dev, c *config, logger *log.Logger) error {
	if c.reset {
		if err := dev.SoftReset(); err != nil {
			return err
		}
		logger.Info("soft reset")
	}
	if c.heater != "" {
		if err := dev.SetHeater(c.heater == "on"); err != nil {
			return err
		}
		logger.Warn("heater switched", "on", c.heater == "on")
	}
	if c.hres >= 0 {
		res, err := humidityResolution(c.hres)
		if err != nil {
			return err
		}
		if err := dev.SetHumidityResolution(res); err != nil {
			return err
		}
	}
	if c.tres >= 0 {
		res, err := temperatureResolution(c.tres)
		if err != nil {
			return err
		}
		if err := dev.SetTemperatureResolution(res); err != nil {
			return err
		}
	}
	if c.alertSet {
		if err := dev.SetAlertLevels(common.FromCelsius(c.alertTemp), common.FromPercent(c.alertHum)); err != nil {
			return err
		}
	}
	// The voltage channel is reported with every run.
	if err := dev.SetVCCEnable(true); err != nil {
		return err
	}
	cfg, err := dev.Configuration()
	if err != nil {
		return err
	}
	logger.Debug("configuration", "config", cfg)
	return nil
}

type printer struct {
	temp, hum *termgauge.Dev
}

func newPrinter(c *config) *printer {
	on := c.gauge == "on"
	if c.gauge == "auto" {
		on = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
	if !on {
		return &printer{}
	}
	return &printer{
		temp: termgauge.New(&termgauge.Opts{X: 40, Label: "T  ", Newline: true}),
		hum:  termgauge.New(&termgauge.Opts{X: 40, Label: "RH ", Newline: true}),
	}
}

func (p *printer) print(env *physic.Env) error {
	t, h := common.Celsius(env.Temperature), common.Percent(env.Humidity)
	if p.temp == nil {
		_, err := fmt.Printf("Temperature: %.2f°C Humidity: %.2f%%rH\n", t, h)
		return err
	}
	if err := p.temp.Level(fmt.Sprintf("%.2f°C", t), t, -40, 125); err != nil {
		return err
	}
	return p.hum.Level(fmt.Sprintf("%.2f%%rH", h), h, 0, 100)
}

func (p *printer) halt() {
	if p.temp != nil {
		_ = p.temp.Halt()
	}
}

// collect feeds readings from ch to fn until count readings were handled (0
// for no limit), ch is closed, or no reading arrived within timeout. It
// returns the last reading and how many were handled.
func collect(ch <-chan physic.Env, count int, timeout time.Duration, fn func(*physic.Env) error) (physic.Env, int, error) {
	var env physic.Env
	n := 0
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return env, n, nil
			}
			env = e
			if err := fn(&env); err != nil {
				return env, n, err
			}
			if n++; count > 0 && n >= count {
				return env, n, nil
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(timeout)
		case <-timer.C:
			return env, n, fmt.Errorf("no reading for %s", timeout)
		}
	}
}

func mainImpl(args []string, logger *log.Logger) error {
	c, err := parseFlags(args)
	if err != nil {
		return err
	}
	if c.verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	b, err := i2creg.Open(c.bus)
	if err != nil {
		return fmt.Errorf("failed to open I²C bus: %w", err)
	}
	defer b.Close()

	opts := cht8305.DefaultOpts
	opts.Address = uint16(c.addr)
	opts.TemperatureOffset = physic.Temperature(c.tempOffset * float64(physic.Celsius))
	opts.HumidityOffset = common.FromPercent(c.humOffset)
	dev, err := cht8305.NewI2C(b, &opts)
	if err != nil {
		return err
	}
	defer dev.Halt()
	logger.Debug("opened", "dev", dev)

	if m, err := dev.Manufacturer(); err != nil {
		return err
	} else if m != cht8305.ManufacturerID {
		logger.Warn("unexpected manufacturer id", "id", fmt.Sprintf("0x%04x", m))
	}
	if v, err := dev.VersionID(); err == nil {
		logger.Info("sensor found", "addr", fmt.Sprintf("0x%02x", dev.Address()), "version", fmt.Sprintf("0x%04x", v))
	}
	if err := configure(dev, c, logger); err != nil {
		return err
	}

	p := newPrinter(c)
	defer p.halt()
	var env physic.Env
	if c.interval == 0 {
		if err := dev.Sense(&env); err != nil {
			return err
		}
		if err := p.print(&env); err != nil {
			return err
		}
	} else {
		ch, err := dev.SenseContinuous(c.interval)
		if err != nil {
			return err
		}
		// SenseContinuous skips failed reads, so a sensor dropping off the
		// bus would otherwise stall the loop.
		var n int
		env, n, err = collect(ch, c.count, 3*c.interval+time.Second, p.print)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("no reading received")
		}
	}

	v, err := dev.Voltage()
	if err != nil {
		return err
	}
	logger.Info("supply", "voltage", v)
	if alert, err := dev.AlertPending(); err == nil && alert {
		logger.Warn("alert pending")
	}

	if c.png != "" {
		img, err := envcard.Render(envcard.Reading{
			Name:        "cht8305",
			Temperature: env.Temperature,
			Humidity:    env.Humidity,
			Voltage:     v,
			Time:        dev.LastRead(),
		}, nil)
		if err != nil {
			return err
		}
		if err := envcard.Save(c.png, img); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", c.png)
	}
	return nil
}

// run executes the command and returns the process exit code. Failures are
// reported through the same logger as the rest of the run.
func run(args []string, w io.Writer) int {
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: "cht8305"})
	if err := mainImpl(args, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		logger.Error("failed", "err", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
