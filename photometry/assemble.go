// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package photometry

import (
	"fmt"

	"github.com/dombeck-lab/photoconv/metadata"
)

// Recording holds the extracted per-recording inputs of the assembler: one
// raw fluorescence trace per fiber name and the co-sampled illumination
// state.
type Recording struct {
	ID           string
	Fluorescence map[string][]float64
	Illumination []bool
}

// Series is one assembled response series: the descriptor's name and
// description, the resolved hardware references, and the demultiplexed,
// re-binned samples.
type Series struct {
	Name         string
	Description  string
	Fiber        metadata.OpticalFiber
	Excitation   metadata.ExcitationSource
	Fluorophore  metadata.Fluorophore
	Unit         string
	Rate         float64
	StartingTime float64
	Data         []float64
}

// Assemble emits one Series per response series descriptor of the metadata
// table, in descriptor order. Each descriptor's (fiber, excitation source,
// fluorophore) triple is resolved against the reference tables; the fiber
// name selects the raw trace, the excitation wavelength selects the
// demultiplexed branch (470 nm or the 405 nm isosbestic control), and the
// branch is re-binned from the acquisition rate to the target rate.
//
// The result is a pure function of the metadata table and the recording:
// assembling the same inputs twice yields identical series.
func Assemble(fp *metadata.FiberPhotometry, rec Recording) ([]Series, error) {
	type branches struct {
		hi, lo []float64
	}
	demuxed := make(map[string]branches, len(rec.Fluorescence))

	series := make([]Series, 0, len(fp.ResponseSeries))
	for _, rs := range fp.ResponseSeries {
		resolved, err := fp.Resolve(rs)
		if err != nil {
			return nil, fmt.Errorf("recording %s: %w", rec.ID, err)
		}

		fiberName := resolved.FiberRef.Name
		trace, ok := rec.Fluorescence[fiberName]
		if !ok {
			return nil, fmt.Errorf("recording %s: response series %q: no fluorescence trace for fiber %q", rec.ID, rs.Name, fiberName)
		}

		b, ok := demuxed[fiberName]
		if !ok {
			hi, lo, err := Demux(trace, rec.Illumination)
			if err != nil {
				return nil, fmt.Errorf("recording %s: response series %q: %w", rec.ID, rs.Name, err)
			}
			b = branches{hi: hi, lo: lo}
			demuxed[fiberName] = b
		}

		var branch []float64
		switch resolved.ExcitationRef.WavelengthNm {
		case 470:
			branch = b.hi
		case 405:
			branch = b.lo
		default:
			return nil, fmt.Errorf("recording %s: response series %q: unsupported excitation wavelength %g nm", rec.ID, rs.Name, resolved.ExcitationRef.WavelengthNm)
		}

		binned, err := Rebin(branch, BinRatio)
		if err != nil {
			return nil, fmt.Errorf("recording %s: response series %q: %w", rec.ID, rs.Name, err)
		}

		series = append(series, Series{
			Name:         rs.Name,
			Description:  rs.Description,
			Fiber:        resolved.FiberRef,
			Excitation:   resolved.ExcitationRef,
			Fluorophore:  resolved.FluorophoreRef,
			Unit:         "F",
			Rate:         TargetRate,
			StartingTime: 0,
			Data:         binned,
		})
	}

	return series, nil
}
