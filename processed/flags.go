// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package processed

import "database/sql"

// Flag is a tri-state quality indicator precomputed by the lab's upstream
// pre-processing. Flags are carried into the output verbatim; no
// thresholding happens here.
type Flag int8

const (
	// FlagNotApplicable marks a criterion that was missing or not
	// evaluated for the recording.
	FlagNotApplicable Flag = iota
	// FlagPass marks a criterion the recording satisfied.
	FlagPass
	// FlagFail marks a criterion the recording failed.
	FlagFail
)

func (f Flag) String() string {
	switch f {
	case FlagPass:
		return "pass"
	case FlagFail:
		return "fail"
	default:
		return "not applicable"
	}
}

// FlagFromNullBool maps a nullable boolean column to a Flag. NULL becomes
// FlagNotApplicable rather than an error, since the flags are advisory.
func FlagFromNullBool(b sql.NullBool) Flag {
	if !b.Valid {
		return FlagNotApplicable
	}
	if b.Bool {
		return FlagPass
	}
	return FlagFail
}

// Flags are the per-recording exclusion criteria of the processed table.
type Flags struct {
	SignalToNoiseGreen    Flag `yaml:"signal_to_noise_green"`
	SignalToNoiseRed      Flag `yaml:"signal_to_noise_red"`
	RunningTime           Flag `yaml:"running_time"`
	MovementArtifactGreen Flag `yaml:"movement_artifact_green"`
	MovementArtifactRed   Flag `yaml:"movement_artifact_red"`
	CrossFiberCorrelation Flag `yaml:"cross_fiber_correlation"`
}
