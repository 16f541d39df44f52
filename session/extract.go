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
	"fmt"
	"os"
	"time"

	"github.com/dombeck-lab/photoconv/picoscope"
)

// Channels holds the concatenated physical traces of one session, one slice
// per semantic role. The struct is filled once during extraction; this is
// the only place where channels are addressed by their digitizer letter.
type Channels struct {
	Velocity     []float64
	Red          []float64
	Green        []float64
	Light        []float64
	Illumination []float64
	Reward       []float64
	Lick         []float64
	AirPuff      []float64

	SampleRate int
	StartTime  time.Time
}

// Extract reads the given sub-recording trace files in order and
// concatenates each channel across them. Every file must carry all eight
// channels at a consistent sample rate; anything else is a fatal input
// error.
func Extract(paths []string) (*Channels, error) {
	ch := &Channels{}

	byLabel := map[string]*[]float64{
		ChannelVelocity:     &ch.Velocity,
		ChannelRed:          &ch.Red,
		ChannelGreen:        &ch.Green,
		ChannelLight:        &ch.Light,
		ChannelIllumination: &ch.Illumination,
		ChannelReward:       &ch.Reward,
		ChannelLick:         &ch.Lick,
		ChannelAirPuff:      &ch.AirPuff,
	}

	for i, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error opening sub-recording: %w", err)
		}

		pr, err := picoscope.Open(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sub-recording %s: %w", path, err)
		}

		hdr := pr.Header()
		if i == 0 {
			ch.SampleRate = hdr.SampleRate
			ch.StartTime = hdr.StartTime
		} else if hdr.SampleRate != ch.SampleRate {
			f.Close()
			return nil, fmt.Errorf("sub-recording %s: sample rate %d does not match session rate %d", path, hdr.SampleRate, ch.SampleRate)
		}

		for _, label := range requiredChannels {
			cr, err := pr.Channel(label)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("sub-recording %s: %w", path, err)
			}
			samples, err := cr.ReadAll()
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("sub-recording %s: channel %s: %w", path, label, err)
			}
			dst := byLabel[label]
			*dst = append(*dst, samples...)
		}

		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("error closing sub-recording: %w", err)
		}
	}

	return ch, nil
}
