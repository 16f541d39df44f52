// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package photometry

import "fmt"

// Rebin downsamples a sequence by averaging contiguous blocks of ratio
// samples. A trailing partial block shorter than the full bin width is
// discarded. Ratio 1 returns an unmodified copy. This is strict
// downsampling by averaging with no filtering step; aliasing is accepted as
// a limitation of the source pipeline.
func Rebin(samples []float64, ratio int) ([]float64, error) {
	if ratio < 1 {
		return nil, fmt.Errorf("bin ratio must be at least 1, got %d", ratio)
	}

	bins := len(samples) / ratio
	out := make([]float64, bins)
	for i := 0; i < bins; i++ {
		sum := 0.0
		for _, v := range samples[i*ratio : (i+1)*ratio] {
			sum += v
		}
		out[i] = sum / float64(ratio)
	}

	return out, nil
}
