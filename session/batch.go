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
	"log/slog"
	"os"
	"path/filepath"
)

// BatchResult summarizes a batch conversion walk.
type BatchResult struct {
	Converted int
	Failed    int
}

// ConvertAll walks a data root laid out as <root>/<subject>/<session>/ and
// converts every session folder it finds, writing <subject>-<session>.nwb
// files under outDir. Session folder names repeat across subjects, so the
// output name carries both. A failing recording aborts only that recording's
// conversion; the walk continues with the next one.
func (c *Converter) ConvertAll(ctx context.Context, root, outDir string, log *slog.Logger) (BatchResult, error) {
	result := BatchResult{}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("error creating output directory: %w", err)
	}

	subjects, err := os.ReadDir(root)
	if err != nil {
		return result, fmt.Errorf("error listing data root: %w", err)
	}

	for _, subject := range subjects {
		if !subject.IsDir() {
			continue
		}

		subjectDir := filepath.Join(root, subject.Name())
		sessions, err := os.ReadDir(subjectDir)
		if err != nil {
			return result, fmt.Errorf("error listing subject %s: %w", subject.Name(), err)
		}

		for _, sess := range sessions {
			if !sess.IsDir() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}

			recordingDir := filepath.Join(subjectDir, sess.Name())
			sessionID := SessionID(recordingDir)
			outputPath := filepath.Join(outDir, sessionID+".nwb")

			log.Info("converting recording", "session", sessionID)
			if err := c.Convert(ctx, recordingDir, outputPath); err != nil {
				log.Error("conversion failed", "session", sessionID, "error", err)
				result.Failed++
				continue
			}

			result.Converted++
		}
	}

	return result, nil
}
