// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package photometry implements the demultiplexing, re-binning and
// response-series assembly of interleaved 470 nm / 405 nm fiber photometry
// recordings.
package photometry

import "fmt"

const (
	// SourceRate is the digitizer acquisition rate in Hz.
	SourceRate = 4000

	// TargetRate is the rate of the binned output series in Hz.
	TargetRate = 100

	// BinRatio is the number of source samples averaged into one output
	// sample per demultiplexed branch.
	BinRatio = SourceRate / TargetRate

	// IlluminationThreshold separates the two illumination states on the
	// waveform generator sync channel: above means the 470 nm LED is on,
	// below means the 405 nm LED is on.
	IlluminationThreshold = 0.5

	// TTLThreshold is the voltage threshold for the binary trigger
	// channels (light stimulus, reward, licking, air puff).
	TTLThreshold = 0.05
)

// IlluminationState thresholds the illumination sync channel into the binary
// demultiplexing key: true for the 470 nm state, false for 405 nm.
func IlluminationState(trace []float64) []bool {
	state := make([]bool, len(trace))
	for i, v := range trace {
		state[i] = v > IlluminationThreshold
	}
	return state
}

// Demux partitions an interleaved fluorescence trace by its co-sampled
// illumination state, preserving relative order within each branch: hi
// collects the samples acquired under 470 nm excitation, lo the samples
// acquired under 405 nm excitation.
//
// A trailing 470 nm run with no 405 nm samples after it is an incomplete
// illumination cycle and is dropped rather than included partially. Mismatched
// lengths are a fatal input error.
func Demux(fluor []float64, state []bool) (hi, lo []float64, err error) {
	if len(fluor) != len(state) {
		return nil, nil, fmt.Errorf("fluorescence and illumination state length mismatch: %d != %d", len(fluor), len(state))
	}

	// Find the end of the last complete illumination cycle.
	end := len(state)
	for end > 0 && state[end-1] {
		end--
	}

	for i := 0; i < end; i++ {
		if state[i] {
			hi = append(hi, fluor[i])
		} else {
			lo = append(lo, fluor[i])
		}
	}

	return hi, lo, nil
}
