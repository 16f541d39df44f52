// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nwb

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/dombeck-lab/photoconv/processed"
)

// magic identifies a session bundle and its format version.
var magic = [8]byte{'N', 'W', 'B', 'P', 'H', 'O', 'T', '1'}

// header is the YAML-encoded metadata section of the bundle. Series sample
// data is stored separately in compressed blocks, one per series in header
// order.
type header struct {
	Identifier string                   `yaml:"identifier"`
	SessionID  string                   `yaml:"session_id"`
	Session    metadata.Session         `yaml:"session"`
	Subject    metadata.Subject         `yaml:"subject"`
	Hardware   metadata.FiberPhotometry `yaml:"fiber_photometry"`
	Flags      processed.Flags          `yaml:"exclusion_flags"`
	Series     []seriesHeader           `yaml:"series,omitempty"`
	Events     []EventSeries            `yaml:"events,omitempty"`
}

type seriesHeader struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Group        Group   `yaml:"group"`
	Unit         string  `yaml:"unit"`
	Rate         float64 `yaml:"rate"`
	StartingTime float64 `yaml:"starting_time"`
	Samples      int     `yaml:"samples"`
}

// Write writes the session bundle to w: the magic, a length-prefixed YAML
// metadata section, then one length-prefixed gzip-compressed block of
// float64 samples per series.
func Write(w io.Writer, f *File) error {
	writer := bufio.NewWriter(w)

	if _, err := writer.Write(magic[:]); err != nil {
		return err
	}

	hdr := header{
		Identifier: f.Identifier,
		SessionID:  f.SessionID,
		Session:    f.Session,
		Subject:    f.Subject,
		Hardware:   f.Hardware,
		Flags:      f.Flags,
		Events:     f.Events,
	}
	for _, s := range f.Series {
		hdr.Series = append(hdr.Series, seriesHeader{
			Name:         s.Name,
			Description:  s.Description,
			Group:        s.Group,
			Unit:         s.Unit,
			Rate:         s.Rate,
			StartingTime: s.StartingTime,
			Samples:      len(s.Data),
		})
	}

	hdrBytes, err := yaml.Marshal(&hdr)
	if err != nil {
		return fmt.Errorf("error encoding bundle metadata: %w", err)
	}
	if err := binary.Write(writer, binary.LittleEndian, uint32(len(hdrBytes))); err != nil {
		return err
	}
	if _, err := writer.Write(hdrBytes); err != nil {
		return err
	}

	for _, s := range f.Series {
		block, err := compressSamples(s.Data)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		if err := binary.Write(writer, binary.LittleEndian, uint32(len(block))); err != nil {
			return err
		}
		if _, err := writer.Write(block); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// WriteFile writes the bundle to path through a temporary file renamed into
// place, so an aborted run leaves no partial output file.
func WriteFile(path string, f *File) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	if err := Write(tmp, f); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error finalizing output file: %w", err)
	}

	return nil
}

func compressSamples(samples []float64) ([]byte, error) {
	raw := make([]byte, 8*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(v))
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("error compressing samples: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("error compressing samples: %w", err)
	}

	return buf.Bytes(), nil
}
