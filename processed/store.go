// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package processed reads the lab's pre-processed photometry table: one row
// per recording carrying the DF/F-normalized series, velocity/acceleration
// and the scalar exclusion flags.
package processed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// Record is one row of the processed table, constructed once during
// extraction. Series columns that are NULL in the table decode to nil
// slices.
type Record struct {
	RecordingID   string
	Experiment    string
	Mouse         string
	Sex           string
	LocationGreen string
	LocationRed   string
	DepthGreenMm  float64
	DepthRedMm    float64

	Velocity     []float64
	Acceleration []float64

	DffGreen           []float64
	DffGreenIsosbestic []float64
	DffRed             []float64
	DffRedIsosbestic   []float64

	// Flip marks a dual-fiber recording that is the channel-swapped
	// duplicate of another row. It is an explicit input, never inferred.
	Flip sql.NullBool

	Flags Flags
}

// DualFiber reports whether the recording carries both green and red
// fluorescence.
func (r *Record) DualFiber() bool {
	return len(r.DffRed) > 0
}

// ValidateFlip rejects dual-fiber recordings whose flip column is NULL: with
// both channels present there is no way to tell the canonical row from its
// channel-swapped duplicate, and the converter never guesses.
func (r *Record) ValidateFlip() error {
	if r.DualFiber() && !r.Flip.Valid {
		return fmt.Errorf("recording %s: dual-fiber recording with unset flip column, cannot tell canonical row from channel-swapped duplicate", r.RecordingID)
	}
	return nil
}

// Store provides read-only access to the processed table.
type Store struct {
	db *sql.DB
}

// OpenStore opens the DuckDB file holding the processed table.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("duckdb", fmt.Sprintf("%s?access_mode=read_only", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open processed table: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Recording fetches one row of the processed table by recording id.
func (s *Store) Recording(ctx context.Context, id string) (*Record, error) {
	const query = `
		SELECT experiment, mouse, sex,
		       location_green, location_red, depth_green_mm, depth_red_mm,
		       velocity, acceleration,
		       dff_green, dff_green_405, dff_red, dff_red_405,
		       snr_green, snr_red, running_time,
		       movement_artifact_green, movement_artifact_red,
		       cross_fiber_correlation, flip
		FROM recordings WHERE recording_id = ?`

	rec := &Record{RecordingID: id}
	var (
		locationRed                              sql.NullString
		depthRed                                 sql.NullFloat64
		velocity, acceleration                   any
		dffGreen, dffGreen405, dffRed, dffRed405 any
		snrGreen, snrRed, runningTime            sql.NullBool
		movArtifactGreen, movArtifactRed         sql.NullBool
		crossFiberCorr                           sql.NullBool
	)

	row := s.db.QueryRowContext(ctx, query, id)
	err := row.Scan(
		&rec.Experiment, &rec.Mouse, &rec.Sex,
		&rec.LocationGreen, &locationRed, &rec.DepthGreenMm, &depthRed,
		&velocity, &acceleration,
		&dffGreen, &dffGreen405, &dffRed, &dffRed405,
		&snrGreen, &snrRed, &runningTime,
		&movArtifactGreen, &movArtifactRed,
		&crossFiberCorr, &rec.Flip,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recording %s not found in processed table", id)
	}
	if err != nil {
		return nil, fmt.Errorf("recording %s: failed to read processed table: %w", id, err)
	}

	rec.LocationRed = locationRed.String
	rec.DepthRedMm = depthRed.Float64

	for _, col := range []struct {
		name string
		src  any
		dst  *[]float64
	}{
		{"velocity", velocity, &rec.Velocity},
		{"acceleration", acceleration, &rec.Acceleration},
		{"dff_green", dffGreen, &rec.DffGreen},
		{"dff_green_405", dffGreen405, &rec.DffGreenIsosbestic},
		{"dff_red", dffRed, &rec.DffRed},
		{"dff_red_405", dffRed405, &rec.DffRedIsosbestic},
	} {
		*col.dst, err = toFloat64s(col.src)
		if err != nil {
			return nil, fmt.Errorf("recording %s: column %s: %w", id, col.name, err)
		}
	}

	rec.Flags = Flags{
		SignalToNoiseGreen:    FlagFromNullBool(snrGreen),
		SignalToNoiseRed:      FlagFromNullBool(snrRed),
		RunningTime:           FlagFromNullBool(runningTime),
		MovementArtifactGreen: FlagFromNullBool(movArtifactGreen),
		MovementArtifactRed:   FlagFromNullBool(movArtifactRed),
		CrossFiberCorrelation: FlagFromNullBool(crossFiberCorr),
	}

	return rec, nil
}

// toFloat64s converts a scanned DuckDB LIST(DOUBLE) value to a float64
// slice. NULL columns decode to nil.
func toFloat64s(v any) ([]float64, error) {
	if v == nil {
		return nil, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of doubles, got %T", v)
	}

	out := make([]float64, len(list))
	for i, e := range list {
		f, ok := e.(float64)
		if !ok {
			return nil, fmt.Errorf("expected a double at index %d, got %T", i, e)
		}
		out[i] = f
	}

	return out, nil
}
