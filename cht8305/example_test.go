// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cht8305_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/sensors/cht8305"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	// Open default I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	sensor, err := cht8305.NewI2C(bus, &cht8305.DefaultOpts)
	if err != nil {
		log.Fatal(err)
	}
	if err := sensor.Read(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Temperature: %s Humidity: %s\n", sensor.Temperature(), sensor.Humidity())
}

func ExampleDev_SetAlertLevels() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	sensor, err := cht8305.NewI2C(bus, nil)
	if err != nil {
		log.Fatal(err)
	}
	// Alert above 30°C or 70 %RH.
	if err := sensor.SetAlertLevels(physic.ZeroCelsius+30*physic.Kelvin, 70*physic.PercentRH); err != nil {
		log.Fatal(err)
	}
	if err := sensor.SetAlertTriggerMode(cht8305.AlertTempOrHumidity); err != nil {
		log.Fatal(err)
	}
	env := physic.Env{}
	if err := sensor.Sense(&env); err != nil {
		log.Fatal(err)
	}
	pending, err := sensor.AlertPending()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s alert pending: %t\n", env, pending)
}
