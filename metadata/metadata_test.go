// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package metadata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseDocument = `
Session:
  session_description: Fiber photometry recording in freely running mice.
  lab: Dombeck Lab
  institution: Northwestern University
Subject:
  species: Mus musculus
  age: P8W/P16W
Ophys:
  FiberPhotometry:
    OpticalFibers:
      - name: chGreen
        description: Optical fiber over the green photodetector path
        manufacturer: Doric
        model: MFP_200/230/900-0.57_1.5m_FC-FLT_LAF
        numerical_aperture: 0.57
        core_diameter_in_um: 200.0
      - name: chRed
        description: Optical fiber over the red photodetector path
        manufacturer: Doric
        model: MFP_200/230/900-0.57_1.5m_FC-FLT_LAF
        numerical_aperture: 0.57
        core_diameter_in_um: 200.0
    ExcitationSources:
      - name: ExcitationSource470
        description: Blue excitation light
        manufacturer: Thorlabs
        model: M70F3
        illumination_type: LED
        excitation_wavelength_in_nm: 470.0
      - name: ExcitationSource405
        description: Purple excitation light for the isosbestic control
        manufacturer: Thorlabs
        model: M405FP1
        illumination_type: LED
        excitation_wavelength_in_nm: 405.0
    Fluorophores:
      - name: GCaMP6f
        label: GCaMP6f
        emission_wavelength_in_nm: 513.0
        injection_location: SNc
    FiberPhotometryResponseSeries:
      - name: FiberPhotometryResponseSeriesGreen
        description: Green fluorescence collected at 470 nm excitation.
        fiber: 0
        excitation_source: 0
        fluorophore: 0
      - name: FiberPhotometryResponseSeriesGreenIsosbestic
        description: Green fluorescence collected at 405 nm excitation.
        fiber: 0
        excitation_source: 1
        fluorophore: 0
`

const overrideDocument = `
Session:
  session_description: Dual-fiber recording in the striatum and SNc.
Subject:
  subject_id: VGlut-A997
  sex: F
`

func writeDocs(t *testing.T, docs ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(docs))
	for i, doc := range docs {
		paths[i] = filepath.Join(dir, "metadata_"+string(rune('a'+i))+".yaml")
		require.NoError(t, os.WriteFile(paths[i], []byte(doc), 0o644))
	}
	return paths
}

func TestLoadLayered(t *testing.T) {
	paths := writeDocs(t, baseDocument, overrideDocument)

	doc, err := metadata.Load(paths...)
	require.NoError(t, err)

	// The override wins per key; untouched base keys survive.
	assert.Equal(t, "Dual-fiber recording in the striatum and SNc.", doc.Session.Description)
	assert.Equal(t, "Dombeck Lab", doc.Session.Lab)
	assert.Equal(t, "VGlut-A997", doc.Subject.SubjectID)
	assert.Equal(t, "Mus musculus", doc.Subject.Species)

	fp := doc.Ophys.FiberPhotometry
	require.Len(t, fp.OpticalFibers, 2)
	require.Len(t, fp.ResponseSeries, 2)
	assert.Equal(t, 470.0, fp.ExcitationSources[0].WavelengthNm)
}

func TestLoadDoesNotMutateBase(t *testing.T) {
	paths := writeDocs(t, baseDocument, overrideDocument)

	// Loading with the override must not change what the base document
	// alone decodes to.
	_, err := metadata.Load(paths...)
	require.NoError(t, err)

	baseOnly, err := metadata.Load(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "Fiber photometry recording in freely running mice.", baseOnly.Session.Description)
	assert.Empty(t, baseOnly.Subject.SubjectID)
}

func TestResolve(t *testing.T) {
	paths := writeDocs(t, baseDocument)

	doc, err := metadata.Load(paths...)
	require.NoError(t, err)

	fp := doc.Ophys.FiberPhotometry
	resolved, err := fp.Resolve(fp.ResponseSeries[1])
	require.NoError(t, err)
	assert.Equal(t, "chGreen", resolved.FiberRef.Name)
	assert.Equal(t, 405.0, resolved.ExcitationRef.WavelengthNm)
	assert.Equal(t, "GCaMP6f", resolved.FluorophoreRef.Name)
}

func TestValidateOutOfRangeIndex(t *testing.T) {
	const badSeries = `
Ophys:
  FiberPhotometry:
    FiberPhotometryResponseSeries:
      - name: FiberPhotometryResponseSeriesGreen
        description: Green fluorescence collected at 470 nm excitation.
        fiber: 5
        excitation_source: 0
        fluorophore: 0
`
	paths := writeDocs(t, baseDocument, badSeries)

	_, err := metadata.Load(paths...)
	require.Error(t, err)

	var resErr *metadata.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "FiberPhotometryResponseSeriesGreen", resErr.Series)
	assert.Equal(t, "fiber", resErr.Field)
	assert.Equal(t, 5, resErr.Index)
	assert.Equal(t, 2, resErr.Count)
}

func TestValidateDuplicateSeriesName(t *testing.T) {
	const dupSeries = `
Ophys:
  FiberPhotometry:
    FiberPhotometryResponseSeries:
      - name: FiberPhotometryResponseSeriesGreen
        fiber: 0
        excitation_source: 0
        fluorophore: 0
      - name: FiberPhotometryResponseSeriesGreen
        fiber: 0
        excitation_source: 1
        fluorophore: 0
`
	paths := writeDocs(t, baseDocument, dupSeries)

	_, err := metadata.Load(paths...)
	require.ErrorContains(t, err, "duplicate response series name")
}
