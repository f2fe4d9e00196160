// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/sensors/cht8305"
	"periph.io/x/conn/v3/physic"
)

func TestParseFlags(t *testing.T) {
	c, err := parseFlags([]string{"-addr", "0x41", "-heater", "off", "-interval", "2s", "-alert-hum", "80"})
	if err != nil {
		t.Fatal(err)
	}
	if c.addr != 0x41 || c.heater != "off" || c.interval != 2*time.Second {
		t.Errorf("unexpected config %#v", c)
	}
	if !c.alertSet || c.alertTemp != 125 || c.alertHum != 80 {
		t.Errorf("alert levels not picked up: %#v", c)
	}

	c, err = parseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.addr != uint(cht8305.DefaultAddress) || c.alertSet || c.hres != -1 || c.gauge != "auto" {
		t.Errorf("unexpected defaults %#v", c)
	}

	for _, args := range [][]string{{"-heater", "maybe"}, {"-gauge", "sometimes"}, {"-nope"}, {"-addr", "0x10040"}, {"-addr", "0x44"}, {"-addr", "0x3f"}} {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestResolutions(t *testing.T) {
	var hTests = []struct {
		bits   int
		result cht8305.HumidityResolution
	}{
		{14, cht8305.HumRes14Bit},
		{11, cht8305.HumRes11Bit},
		{8, cht8305.HumRes8Bit},
	}
	for _, test := range hTests {
		if res, err := humidityResolution(test.bits); err != nil || res != test.result {
			t.Errorf("humidityResolution(%d) = %s, %v", test.bits, res, err)
		}
	}
	if _, err := humidityResolution(12); err == nil {
		t.Error("expected error for 12 bits")
	}
	if res, err := temperatureResolution(11); err != nil || res != cht8305.TempRes11Bit {
		t.Errorf("temperatureResolution(11) = %s, %v", res, err)
	}
	if _, err := temperatureResolution(8); err == nil {
		t.Error("expected error for 8 bits")
	}
}

func TestCollect(t *testing.T) {
	ch := make(chan physic.Env, 4)
	for i := 1; i <= 3; i++ {
		ch <- physic.Env{Humidity: physic.RelativeHumidity(i) * physic.PercentRH}
	}
	seen := 0
	count := func(*physic.Env) error {
		seen++
		return nil
	}
	env, n, err := collect(ch, 2, time.Second, count)
	if err != nil || n != 2 || seen != 2 {
		t.Fatalf("collect() = %d, %v; handled %d", n, err, seen)
	}
	if env.Humidity != 2*physic.PercentRH {
		t.Errorf("expected the second reading, received %s", env.Humidity)
	}

	// A closed channel ends the loop.
	close(ch)
	if env, n, err = collect(ch, 0, time.Second, count); err != nil || n != 1 || env.Humidity != 3*physic.PercentRH {
		t.Errorf("collect() on closed channel = %s, %d, %v", env.Humidity, n, err)
	}

	// A sensor that stops answering must not block forever.
	silent := make(chan physic.Env)
	if _, n, err = collect(silent, 5, 10*time.Millisecond, count); err == nil || n != 0 {
		t.Errorf("expected a timeout, received %d, %v", n, err)
	}

	errPrint := errors.New("print failed")
	ch = make(chan physic.Env, 1)
	ch <- physic.Env{}
	if _, _, err = collect(ch, 0, time.Second, func(*physic.Env) error { return errPrint }); !errors.Is(err, errPrint) {
		t.Errorf("expected the callback error, received %v", err)
	}
}

func TestRunReportsThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	if code := run([]string{"-addr", "0x44"}, &buf); code != 1 {
		t.Errorf("expected exit code 1, received %d", code)
	}
	out := buf.String()
	if !strings.Contains(out, "cht8305") || !strings.Contains(out, "-addr must be within") {
		t.Errorf("error not written through the configured logger: %q", out)
	}
}
