// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestWord(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result uint16
	}{
		{bytes: []byte{0xbe, 0xef}, result: 0xbeef},
		{bytes: []byte{0x59, 0x59}, result: 0x5959},
		{bytes: []byte{0x00, 0x01}, result: 0x0001},
		{bytes: []byte{0xff, 0x00, 0x12}, result: 0xff00},
	}
	for _, test := range tests {
		res := Word(test.bytes)
		if res != test.result {
			t.Errorf("Word(%#v)!=0x%x received 0x%x", test.bytes, test.result, res)
		}
		b := make([]byte, 2)
		PutWord(b, test.result)
		if b[0] != test.bytes[0] || b[1] != test.bytes[1] {
			t.Errorf("PutWord(0x%x) wrote %#v", test.result, b)
		}
	}
}

func TestUnits(t *testing.T) {
	if c := Celsius(physic.ZeroCelsius + 25*physic.Celsius); math.Abs(c-25) > 1e-9 {
		t.Errorf("Celsius() expected 25 received %f", c)
	}
	if temp := FromCelsius(-40); temp != physic.ZeroCelsius-40*physic.Celsius {
		t.Errorf("FromCelsius(-40) received %s", temp)
	}
	if p := Percent(50 * physic.PercentRH); p != 50 {
		t.Errorf("Percent() expected 50 received %f", p)
	}
	if h := FromPercent(12.5); h != 125*physic.PercentRH/10 {
		t.Errorf("FromPercent(12.5) received %s", h)
	}
}
