// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package nwb reads and writes the standardized session bundle: one file per
// session holding session/subject metadata, the hardware reference tables,
// the assembled response series, behavior and event data, and the carried
// exclusion flags.
package nwb

import (
	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/dombeck-lab/photoconv/processed"
)

// Group names the section of the bundle a series belongs to.
type Group string

const (
	// GroupAcquisition holds raw traces at the digitizer rate.
	GroupAcquisition Group = "acquisition"
	// GroupOphys holds the demultiplexed and binned response series.
	GroupOphys Group = "ophys"
	// GroupBehavior holds velocity and acceleration.
	GroupBehavior Group = "behavior"
)

// File is the fully assembled session bundle. It is built in memory and
// written once at the end of a recording's processing.
type File struct {
	Identifier string // Unique file identifier (UUID)
	SessionID  string

	Session  metadata.Session
	Subject  metadata.Subject
	Hardware metadata.FiberPhotometry

	Flags processed.Flags

	Series []Series
	Events []EventSeries
}

// Series is one named, timestamped sequence of samples.
type Series struct {
	Name         string
	Description  string
	Group        Group
	Unit         string
	Rate         float64 // Samples per second
	StartingTime float64 // Seconds from session start
	Data         []float64
}

// EventSeries carries the onset timestamps of one binary trigger channel.
type EventSeries struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Timestamps  []float64 `yaml:"timestamps"`
}
