// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package metadata

import "fmt"

// ResolutionError reports a response series descriptor whose index points
// outside the bounds of one of its reference tables.
type ResolutionError struct {
	Series string // Name of the offending response series descriptor
	Field  string // Which reference the descriptor failed to resolve
	Index  int    // The out-of-range index
	Count  int    // Number of rows in the referenced table
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("response series %q: %s index %d out of range (table has %d rows)",
		e.Series, e.Field, e.Index, e.Count)
}

// Validate checks the merged document before it is used: every response
// series descriptor must resolve to exactly one row in each of its three
// reference tables. An out-of-range index is reported immediately, never
// clamped or defaulted.
func (d *Document) Validate() error {
	fp := &d.Ophys.FiberPhotometry

	seen := make(map[string]struct{}, len(fp.ResponseSeries))
	for _, rs := range fp.ResponseSeries {
		if rs.Name == "" {
			return fmt.Errorf("response series with empty name in metadata")
		}
		if _, dup := seen[rs.Name]; dup {
			return fmt.Errorf("duplicate response series name %q in metadata", rs.Name)
		}
		seen[rs.Name] = struct{}{}

		if _, err := fp.Resolve(rs); err != nil {
			return err
		}
	}

	return nil
}

// Resolve maps a response series descriptor to the hardware rows it
// references. Resolution failure is an input validation error carrying the
// descriptor name and the offending index.
func (fp *FiberPhotometry) Resolve(rs ResponseSeries) (*ResolvedSeries, error) {
	if rs.Fiber < 0 || rs.Fiber >= len(fp.OpticalFibers) {
		return nil, &ResolutionError{Series: rs.Name, Field: "fiber", Index: rs.Fiber, Count: len(fp.OpticalFibers)}
	}
	if rs.ExcitationSource < 0 || rs.ExcitationSource >= len(fp.ExcitationSources) {
		return nil, &ResolutionError{Series: rs.Name, Field: "excitation source", Index: rs.ExcitationSource, Count: len(fp.ExcitationSources)}
	}
	if rs.Fluorophore < 0 || rs.Fluorophore >= len(fp.Fluorophores) {
		return nil, &ResolutionError{Series: rs.Name, Field: "fluorophore", Index: rs.Fluorophore, Count: len(fp.Fluorophores)}
	}

	return &ResolvedSeries{
		ResponseSeries: rs,
		FiberRef:       fp.OpticalFibers[rs.Fiber],
		ExcitationRef:  fp.ExcitationSources[rs.ExcitationSource],
		FluorophoreRef: fp.Fluorophores[rs.Fluorophore],
	}, nil
}
