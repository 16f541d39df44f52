// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package processed_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dombeck-lab/photoconv/processed"
)

const schema = `
CREATE TABLE recordings (
	recording_id            VARCHAR PRIMARY KEY,
	experiment              VARCHAR,
	mouse                   VARCHAR,
	sex                     VARCHAR,
	location_green          VARCHAR,
	location_red            VARCHAR,
	depth_green_mm          DOUBLE,
	depth_red_mm            DOUBLE,
	velocity                DOUBLE[],
	acceleration            DOUBLE[],
	dff_green               DOUBLE[],
	dff_green_405           DOUBLE[],
	dff_red                 DOUBLE[],
	dff_red_405             DOUBLE[],
	snr_green               BOOLEAN,
	snr_red                 BOOLEAN,
	running_time            BOOLEAN,
	movement_artifact_green BOOLEAN,
	movement_artifact_red   BOOLEAN,
	cross_fiber_correlation BOOLEAN,
	flip                    BOOLEAN
)`

func newTestStore(t *testing.T, inserts ...string) *processed.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "processed.duckdb")
	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)

	_, err = db.Exec(schema)
	require.NoError(t, err)
	for _, insert := range inserts {
		_, err = db.Exec(insert)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	store, err := processed.OpenStore(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestRecording(t *testing.T) {
	store := newTestStore(t, `
		INSERT INTO recordings VALUES (
			'VGlut-A997-20200129-0002', 'VGlut', 'A997', 'F',
			'snc', 'dls', 4.2, 2.8,
			[0.1, 0.2, 0.3], [0.0, 0.1, 0.1],
			[1.0, 1.1, 1.2], [0.9, 0.9, 0.9],
			[2.0, 2.1, 2.2], [1.9, 1.9, 1.9],
			TRUE, FALSE, TRUE, TRUE, NULL, TRUE, FALSE
		)`)

	rec, err := store.Recording(context.Background(), "VGlut-A997-20200129-0002")
	require.NoError(t, err)

	assert.Equal(t, "VGlut", rec.Experiment)
	assert.Equal(t, "A997", rec.Mouse)
	assert.Equal(t, "dls", rec.LocationRed)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, rec.Velocity)
	assert.Equal(t, []float64{1.0, 1.1, 1.2}, rec.DffGreen)
	assert.Equal(t, []float64{1.9, 1.9, 1.9}, rec.DffRedIsosbestic)
	assert.True(t, rec.DualFiber())
	require.NoError(t, rec.ValidateFlip())
	assert.False(t, rec.Flip.Bool)

	// NULL flags pass through as the not-applicable sentinel.
	assert.Equal(t, processed.FlagPass, rec.Flags.SignalToNoiseGreen)
	assert.Equal(t, processed.FlagFail, rec.Flags.SignalToNoiseRed)
	assert.Equal(t, processed.FlagNotApplicable, rec.Flags.MovementArtifactRed)
	assert.Equal(t, processed.FlagPass, rec.Flags.CrossFiberCorrelation)
}

func TestRecordingSingleFiber(t *testing.T) {
	store := newTestStore(t, `
		INSERT INTO recordings VALUES (
			'VGlut-A998-20200130-0001', 'VGlut', 'A998', 'M',
			'snc', NULL, 3.9, NULL,
			[0.1], [0.0],
			[1.0], [0.9],
			NULL, NULL,
			TRUE, NULL, TRUE, TRUE, NULL, NULL, NULL
		)`)

	rec, err := store.Recording(context.Background(), "VGlut-A998-20200130-0001")
	require.NoError(t, err)

	assert.Empty(t, rec.LocationRed)
	assert.Nil(t, rec.DffRed)
	assert.False(t, rec.DualFiber())

	// A single-fiber recording has no duplicate to disambiguate, so an
	// unset flip column is fine.
	require.NoError(t, rec.ValidateFlip())
	assert.Equal(t, processed.FlagNotApplicable, rec.Flags.SignalToNoiseRed)
}

func TestRecordingAmbiguousFlip(t *testing.T) {
	store := newTestStore(t, `
		INSERT INTO recordings VALUES (
			'VGlut-A999-20200131-0001', 'VGlut', 'A999', 'F',
			'snc', 'dms', 4.0, 2.5,
			[0.1], [0.0],
			[1.0], [0.9],
			[2.0], [1.9],
			TRUE, TRUE, TRUE, TRUE, TRUE, TRUE, NULL
		)`)

	rec, err := store.Recording(context.Background(), "VGlut-A999-20200131-0001")
	require.NoError(t, err)

	err = rec.ValidateFlip()
	require.ErrorContains(t, err, "VGlut-A999-20200131-0001")
	require.ErrorContains(t, err, "unset flip column")
}

func TestRecordingNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Recording(context.Background(), "missing-0000")
	require.ErrorContains(t, err, "recording missing-0000 not found")
}
