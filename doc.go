// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensors is a container for environmental sensor drivers and the
// small tools built around them.
//
// The CHT8305 driver lives in the cht8305 package; cmd/cht8305 is a command
// line front end for it.
package sensors
