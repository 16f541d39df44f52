// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/dombeck-lab/photoconv/nwb"
	"github.com/dombeck-lab/photoconv/photometry"
	"github.com/dombeck-lab/photoconv/processed"
)

// Converter turns one recording folder into one output bundle. The metadata
// document and the processed table are shared read-only across recordings;
// everything else is owned per conversion run.
type Converter struct {
	Metadata *metadata.Document
	Store    *processed.Store
}

// Convert runs the full pipeline for one recording: discover and extract the
// sub-recording traces, demultiplex and bin the fluorescence into response
// series, attach the processed behavior/DF/F series and exclusion flags, and
// write the bundle. Any failure aborts the recording's conversion with no
// partial output.
func (c *Converter) Convert(ctx context.Context, recordingDir, outputPath string) error {
	paths, err := Discover(recordingDir)
	if err != nil {
		return err
	}

	ch, err := Extract(paths)
	if err != nil {
		return err
	}

	id := SessionID(recordingDir)
	rec, err := c.Store.Recording(ctx, id)
	if err != nil {
		return err
	}
	if err := rec.ValidateFlip(); err != nil {
		return err
	}

	// A flipped row of the processed table describes the channel-swapped
	// duplicate of a dual-fiber recording, so the raw channels swap to
	// match it.
	green, red := ch.Green, ch.Red
	if rec.Flip.Valid && rec.Flip.Bool {
		green, red = red, green
	}
	fluor := map[string][]float64{FiberGreen: green, FiberRed: red}

	assembled, err := photometry.Assemble(&c.Metadata.Ophys.FiberPhotometry, photometry.Recording{
		ID:           id,
		Fluorescence: fluor,
		Illumination: photometry.IlluminationState(ch.Illumination),
	})
	if err != nil {
		return err
	}

	file := &nwb.File{
		Identifier: uuid.NewString(),
		SessionID:  id,
		Session:    c.Metadata.Session,
		Subject:    subjectFor(c.Metadata.Subject, rec),
		Hardware:   c.Metadata.Ophys.FiberPhotometry,
		Flags:      rec.Flags,
	}
	if file.Session.StartTime.IsZero() {
		file.Session.StartTime = ch.StartTime
	}

	for _, s := range assembled {
		file.Series = append(file.Series, nwb.Series{
			Name:         s.Name,
			Description:  s.Description,
			Group:        nwb.GroupOphys,
			Unit:         s.Unit,
			Rate:         s.Rate,
			StartingTime: s.StartingTime,
			Data:         s.Data,
		})
	}

	dff, err := c.dffSeries(id, rec)
	if err != nil {
		return err
	}
	file.Series = append(file.Series, dff...)

	file.Series = append(file.Series, behaviorSeries(rec)...)
	file.Series = append(file.Series, acquisitionSeries(ch, rec.DualFiber())...)
	file.Events = events(ch)

	return nwb.WriteFile(outputPath, file)
}

// dffSeries re-emits the already-normalized DF/F series of the processed
// table, one per response series descriptor with a DfOverF name prefix. The
// normalization happened upstream; the values are carried verbatim.
func (c *Converter) dffSeries(id string, rec *processed.Record) ([]nwb.Series, error) {
	fp := &c.Metadata.Ophys.FiberPhotometry

	var series []nwb.Series
	for _, rs := range fp.ResponseSeries {
		resolved, err := fp.Resolve(rs)
		if err != nil {
			return nil, fmt.Errorf("recording %s: %w", id, err)
		}

		var data []float64
		switch {
		case resolved.FiberRef.Name == FiberGreen && resolved.ExcitationRef.WavelengthNm == 470:
			data = rec.DffGreen
		case resolved.FiberRef.Name == FiberGreen && resolved.ExcitationRef.WavelengthNm == 405:
			data = rec.DffGreenIsosbestic
		case resolved.FiberRef.Name == FiberRed && resolved.ExcitationRef.WavelengthNm == 470:
			data = rec.DffRed
		case resolved.FiberRef.Name == FiberRed && resolved.ExcitationRef.WavelengthNm == 405:
			data = rec.DffRedIsosbestic
		}
		if data == nil {
			continue
		}

		series = append(series, nwb.Series{
			Name:        "DfOverF" + rs.Name,
			Description: "DF/F normalized " + rs.Description,
			Group:       nwb.GroupOphys,
			Unit:        "dF/F",
			Rate:        photometry.TargetRate,
			Data:        data,
		})
	}

	return series, nil
}

func behaviorSeries(rec *processed.Record) []nwb.Series {
	var series []nwb.Series
	if len(rec.Velocity) > 0 {
		series = append(series, nwb.Series{
			Name:        "Velocity",
			Description: "The velocity from rotary encoder converted to m/s.",
			Group:       nwb.GroupBehavior,
			Unit:        "m/s",
			Rate:        photometry.TargetRate,
			Data:        rec.Velocity,
		})
	}
	if len(rec.Acceleration) > 0 {
		series = append(series, nwb.Series{
			Name:        "Acceleration",
			Description: "The acceleration measured in the unit of m/s2.",
			Group:       nwb.GroupBehavior,
			Unit:        "m/s2",
			Rate:        photometry.TargetRate,
			Data:        rec.Acceleration,
		})
	}
	return series
}

func acquisitionSeries(ch *Channels, dualFiber bool) []nwb.Series {
	rate := float64(ch.SampleRate)
	series := []nwb.Series{
		{
			Name:        "Velocity",
			Description: "Raw velocity trace from the rotary encoder.",
			Group:       nwb.GroupAcquisition,
			Unit:        "V",
			Rate:        rate,
			Data:        ch.Velocity,
		},
		{
			Name:        "FluorescenceGreen",
			Description: "Raw interleaved green fluorescence trace.",
			Group:       nwb.GroupAcquisition,
			Unit:        "V",
			Rate:        rate,
			Data:        ch.Green,
		},
	}
	if dualFiber {
		series = append(series, nwb.Series{
			Name:        "FluorescenceRed",
			Description: "Raw interleaved red fluorescence trace.",
			Group:       nwb.GroupAcquisition,
			Unit:        "V",
			Rate:        rate,
			Data:        ch.Red,
		})
	}
	return series
}

// events extracts the onset times of the binary trigger channels.
func events(ch *Channels) []nwb.EventSeries {
	rate := float64(ch.SampleRate)
	onsets := func(trace []float64) []float64 {
		return photometry.EdgeTimes(photometry.RisingEdges(trace, photometry.TTLThreshold), rate)
	}

	return []nwb.EventSeries{
		{Name: "Light", Description: "Light stimulus trigger", Timestamps: onsets(ch.Light)},
		{Name: "Reward", Description: "Reward delivery trigger", Timestamps: onsets(ch.Reward)},
		{Name: "Lick", Description: "Licking sensor output", Timestamps: onsets(ch.Lick)},
		{Name: "AirPuff", Description: "Airpuff delivery trigger", Timestamps: onsets(ch.AirPuff)},
	}
}

// subjectFor overlays the subject fields recorded in the processed table on
// the metadata document's subject block.
func subjectFor(base metadata.Subject, rec *processed.Record) metadata.Subject {
	subject := base
	if rec.Mouse != "" {
		subject.SubjectID = rec.Mouse
		if rec.Experiment != "" {
			subject.SubjectID = rec.Experiment + "-" + rec.Mouse
		}
	}
	if rec.Sex != "" {
		subject.Sex = strings.ToUpper(rec.Sex)
	}
	return subject
}
