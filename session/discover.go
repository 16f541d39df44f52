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
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Discover finds the sub-recording trace files of a session folder. A
// session named 20200129-0002 stores its sub-recordings as
// 20200129-0002_1.pico, 20200129-0002_2.pico and so on; they are returned in
// natural order of their numeric suffix so that concatenation reconstructs
// the full recording.
func Discover(folder string) ([]string, error) {
	sessionName := filepath.Base(folder)
	paths, err := filepath.Glob(filepath.Join(folder, sessionName+"_*.pico"))
	if err != nil {
		return nil, fmt.Errorf("error listing sub-recordings: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no sub-recording trace files in %s", folder)
	}

	type subRecording struct {
		path  string
		index int
	}
	subs := make([]subRecording, 0, len(paths))
	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), ".pico")
		suffix := stem[strings.LastIndex(stem, "_")+1:]
		index, err := strconv.Atoi(suffix)
		if err != nil {
			return nil, fmt.Errorf("sub-recording %s: non-numeric suffix %q", path, suffix)
		}
		subs = append(subs, subRecording{path: path, index: index})
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].index < subs[j].index })

	ordered := make([]string, len(subs))
	for i, sub := range subs {
		ordered[i] = sub.path
	}
	return ordered, nil
}

// SessionID derives the session identifier of a recording folder from its
// last two path elements, e.g. VGlut-A997/20200129-0002 becomes
// VGlut-A997-20200129-0002. This matches the keying of the processed table.
func SessionID(folder string) string {
	abs := filepath.Clean(folder)
	return filepath.Base(filepath.Dir(abs)) + "-" + filepath.Base(abs)
}
