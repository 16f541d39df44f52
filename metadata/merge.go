// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the given YAML documents in order, applying each one as an
// override of the documents before it, and decodes the merged result into a
// validated Document. The base documents are never mutated; the merge always
// builds a fresh tree.
func Load(paths ...string) (*Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no metadata documents given")
	}

	merged := map[string]any{}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading metadata document: %w", err)
		}

		layer := map[string]any{}
		if err := yaml.Unmarshal(raw, &layer); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}

		merged = merge(merged, layer)
	}

	doc, err := decode(merged)
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// merge returns a new map combining base and override. Nested maps are
// merged key-wise with the override winning; every other value (including
// sequences) is replaced wholesale. Neither input is modified.
func merge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}

	for k, v := range override {
		baseChild, baseOk := out[k].(map[string]any)
		overrideChild, overrideOk := v.(map[string]any)
		if baseOk && overrideOk {
			out[k] = merge(baseChild, overrideChild)
			continue
		}
		out[k] = v
	}

	return out
}

// decode converts the merged tree into the typed Document. This is the one
// place where string-keyed access happens; everything downstream works on
// typed rows.
func decode(merged map[string]any) (*Document, error) {
	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("error encoding merged metadata: %w", err)
	}

	doc := &Document{}
	if err := yaml.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("error decoding merged metadata: %w", err)
	}

	return doc, nil
}
