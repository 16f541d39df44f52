// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package session orchestrates one conversion run: it discovers the
// sub-recordings of a session, extracts the digitizer channels, assembles
// the response series and writes the output bundle.
package session

// The digitizer channel layout is a process-wide convention: each channel
// letter carries exactly one semantic role for the lifetime of a conversion
// run.
const (
	ChannelVelocity     = "A" // Velocity from rotary encoder
	ChannelRed          = "B" // Red fluorescence
	ChannelGreen        = "C" // Green fluorescence
	ChannelLight        = "D" // Light stimulus trigger
	ChannelIllumination = "E" // Illumination state (470 nm on / 405 nm on)
	ChannelReward       = "F" // Reward delivery trigger
	ChannelLick         = "G" // Licking sensor output
	ChannelAirPuff      = "H" // Air puff delivery trigger
)

// requiredChannels lists every channel a sub-recording must carry. A missing
// channel is a fatal input error.
var requiredChannels = []string{
	ChannelVelocity,
	ChannelRed,
	ChannelGreen,
	ChannelLight,
	ChannelIllumination,
	ChannelReward,
	ChannelLick,
	ChannelAirPuff,
}

// FiberGreen and FiberRed are the fiber names of the metadata reference
// table; they select which fluorescence channel a response series reads.
const (
	FiberGreen = "chGreen"
	FiberRed   = "chRed"
)
