// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nwb_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/dombeck-lab/photoconv/nwb"
	"github.com/dombeck-lab/photoconv/processed"
)

func testFile() *nwb.File {
	return &nwb.File{
		Identifier: "6e1c6a49-88ef-45a0-8c3e-d3a9a27e64a1",
		SessionID:  "VGlut-A997-20200129-0002",
		Session: metadata.Session{
			Description: "Fiber photometry recording in a freely running mouse.",
			StartTime:   time.Date(2020, 1, 29, 14, 30, 0, 0, time.UTC),
			Lab:         "Dombeck Lab",
			Institution: "Northwestern University",
		},
		Subject: metadata.Subject{
			SubjectID: "VGlut-A997",
			Species:   "Mus musculus",
			Sex:       "F",
		},
		Hardware: metadata.FiberPhotometry{
			OpticalFibers: []metadata.OpticalFiber{
				{Name: "chGreen", Manufacturer: "Doric", Model: "MFP_200/230/900-0.57_1.5m_FC-FLT_LAF"},
			},
			ExcitationSources: []metadata.ExcitationSource{
				{Name: "ExcitationSource470", WavelengthNm: 470},
				{Name: "ExcitationSource405", WavelengthNm: 405},
			},
			Fluorophores: []metadata.Fluorophore{
				{Name: "GCaMP6f"},
			},
			ResponseSeries: []metadata.ResponseSeries{
				{Name: "FiberPhotometryResponseSeriesGreen", Fiber: 0, ExcitationSource: 0, Fluorophore: 0},
			},
		},
		Flags: processed.Flags{
			SignalToNoiseGreen: processed.FlagPass,
			RunningTime:        processed.FlagFail,
		},
		Series: []nwb.Series{
			{
				Name:        "FiberPhotometryResponseSeriesGreen",
				Description: "Green fluorescence collected at 470 nm excitation.",
				Group:       nwb.GroupOphys,
				Unit:        "F",
				Rate:        100,
				Data:        []float64{1.0, 1.5, 0.25, -3.75, 1e-9},
			},
			{
				Name:         "Velocity",
				Description:  "The velocity from rotary encoder converted to m/s.",
				Group:        nwb.GroupBehavior,
				Unit:         "m/s",
				Rate:         100,
				StartingTime: 0,
				Data:         []float64{0.1, 0.2, 0.3},
			},
		},
		Events: []nwb.EventSeries{
			{
				Name:        "Reward",
				Description: "Onset times of the reward delivery trigger.",
				Timestamps:  []float64{1.25, 7.5},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	f := testFile()

	var buf bytes.Buffer
	require.NoError(t, nwb.Write(&buf, f))

	got, err := nwb.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestRoundTripEmptyEventTimestamps(t *testing.T) {
	f := testFile()
	f.Events = append(f.Events, nwb.EventSeries{
		Name:        "AirPuff",
		Description: "Onset times of the airpuff delivery trigger.",
		Timestamps:  []float64{},
	})

	var buf bytes.Buffer
	require.NoError(t, nwb.Write(&buf, f))

	got, err := nwb.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	// An event channel with no onsets keeps its timestamps field stable
	// across repeated write and read cycles.
	require.NotNil(t, got.Events[1].Timestamps)
	assert.Empty(t, got.Events[1].Timestamps)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20200129-0002.nwb")

	require.NoError(t, nwb.WriteFile(path, testFile()))

	// No temporary files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "20200129-0002.nwb", entries[0].Name())

	got, err := nwb.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testFile(), got)
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := nwb.Read(bytes.NewReader([]byte("notabundleatall")))
	require.ErrorContains(t, err, "bad magic")
}

func TestWriteDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, nwb.Write(&first, testFile()))
	require.NoError(t, nwb.Write(&second, testFile()))
	assert.Equal(t, first.Bytes(), second.Bytes())
}
