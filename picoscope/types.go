// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package picoscope

import "time"

type Version string

const (
	// Version1 represents the version of the trace file format.
	Version1 Version = "1"
)

// Header represents the trace file header.
type Header struct {
	Version      Version   // Version of the trace file format (usually "1")
	SessionID    string    // Identification of the recording session (e.g., VGlut-A997-20200129-0002)
	RecordingID  string    // Identification of the sub-recording within the session
	StartTime    time.Time // Start date of the recording
	HeaderBytes  int       // Number of bytes in the header
	SampleRate   int       // Acquisition rate in Hz, shared by all channels
	Blocks       int       // Number of data blocks, -1 if unknown
	BlockSamples int       // Number of samples per channel in each data block
	ChannelCount int       // Number of channels in each data block
	Channels     []Channel // Details of each channel
}

// Channel represents the characteristics of each acquisition channel in the
// trace file. Channels are addressed by their single-letter digitizer label.
type Channel struct {
	Label       string  // Digitizer channel label (A-H)
	Role        string  // Semantic role of the channel (e.g., Velocity from rotary encoder)
	Unit        string  // Physical dimension (e.g., V)
	PhysicalMin float64 // Minimum physical value
	PhysicalMax float64 // Maximum physical value
	DigitalMin  int     // Minimum digital value
	DigitalMax  int     // Maximum digital value
}
