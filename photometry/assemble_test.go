// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package photometry_test

import (
	"testing"

	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/dombeck-lab/photoconv/photometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFiberPhotometry() *metadata.FiberPhotometry {
	return &metadata.FiberPhotometry{
		OpticalFibers: []metadata.OpticalFiber{
			{Name: "chGreen", Description: "Fiber over the green path"},
		},
		ExcitationSources: []metadata.ExcitationSource{
			{Name: "ExcitationSource470", WavelengthNm: 470},
			{Name: "ExcitationSource405", WavelengthNm: 405},
		},
		Fluorophores: []metadata.Fluorophore{
			{Name: "GCaMP6f"},
		},
		ResponseSeries: []metadata.ResponseSeries{
			{
				Name:             "FiberPhotometryResponseSeriesGreen",
				Description:      "Green fluorescence collected at 470 nm excitation.",
				Fiber:            0,
				ExcitationSource: 0,
				Fluorophore:      0,
			},
			{
				Name:             "FiberPhotometryResponseSeriesGreenIsosbestic",
				Description:      "Green fluorescence collected at 405 nm excitation.",
				Fiber:            0,
				ExcitationSource: 1,
				Fluorophore:      0,
			},
		},
	}
}

// testRecording builds an interleaved trace alternating 20-sample 470 nm
// runs valued 2.0 with 20-sample 405 nm runs valued 1.0.
func testRecording(cycles int) photometry.Recording {
	var trace []float64
	var state []bool
	for c := 0; c < cycles; c++ {
		for i := 0; i < 20; i++ {
			trace = append(trace, 2.0)
			state = append(state, true)
		}
		for i := 0; i < 20; i++ {
			trace = append(trace, 1.0)
			state = append(state, false)
		}
	}
	return photometry.Recording{
		ID:           "VGlut-A997-20200129-0002",
		Fluorescence: map[string][]float64{"chGreen": trace},
		Illumination: state,
	}
}

func TestAssemble(t *testing.T) {
	fp := testFiberPhotometry()
	rec := testRecording(100) // 2000 samples per branch

	series, err := photometry.Assemble(fp, rec)
	require.NoError(t, err)
	require.Len(t, series, 2)

	green := series[0]
	assert.Equal(t, "FiberPhotometryResponseSeriesGreen", green.Name)
	assert.Equal(t, "chGreen", green.Fiber.Name)
	assert.Equal(t, 470.0, green.Excitation.WavelengthNm)
	assert.Equal(t, "GCaMP6f", green.Fluorophore.Name)
	assert.Equal(t, float64(photometry.TargetRate), green.Rate)
	require.Len(t, green.Data, 50) // floor(2000 / 40)
	for _, v := range green.Data {
		assert.Equal(t, 2.0, v)
	}

	isosbestic := series[1]
	assert.Equal(t, 405.0, isosbestic.Excitation.WavelengthNm)
	require.Len(t, isosbestic.Data, 50)
	for _, v := range isosbestic.Data {
		assert.Equal(t, 1.0, v)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	fp := testFiberPhotometry()
	rec := testRecording(100)

	first, err := photometry.Assemble(fp, rec)
	require.NoError(t, err)
	second, err := photometry.Assemble(fp, rec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssembleUnresolvableDescriptor(t *testing.T) {
	fp := testFiberPhotometry()
	fp.ResponseSeries[0].Fiber = 5

	_, err := photometry.Assemble(fp, testRecording(100))
	require.Error(t, err)

	var resErr *metadata.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "FiberPhotometryResponseSeriesGreen", resErr.Series)
	assert.Equal(t, 5, resErr.Index)
}

func TestAssembleMissingFiberTrace(t *testing.T) {
	fp := testFiberPhotometry()
	rec := testRecording(100)
	delete(rec.Fluorescence, "chGreen")

	_, err := photometry.Assemble(fp, rec)
	require.ErrorContains(t, err, `no fluorescence trace for fiber "chGreen"`)
}
