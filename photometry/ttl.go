// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package photometry

// RisingEdges returns the sample indices at which the trace crosses the
// threshold upwards. Used to extract onset times of the binary trigger
// channels.
func RisingEdges(trace []float64, threshold float64) []int {
	var edges []int
	for i := 1; i < len(trace); i++ {
		if trace[i-1] <= threshold && trace[i] > threshold {
			edges = append(edges, i)
		}
	}
	return edges
}

// FallingEdges returns the sample indices at which the trace crosses the
// threshold downwards.
func FallingEdges(trace []float64, threshold float64) []int {
	var edges []int
	for i := 1; i < len(trace); i++ {
		if trace[i-1] > threshold && trace[i] <= threshold {
			edges = append(edges, i)
		}
	}
	return edges
}

// EdgeTimes converts edge sample indices at the given rate to timestamps in
// seconds.
func EdgeTimes(edges []int, rate float64) []float64 {
	times := make([]float64, len(edges))
	for i, e := range edges {
		times[i] = float64(e) / rate
	}
	return times
}
