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

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"
)

// Read parses a session bundle from r.
func Read(r io.Reader) (*File, error) {
	reader := bufio.NewReader(r)

	var gotMagic [8]byte
	if _, err := io.ReadFull(reader, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("error reading bundle magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("not a session bundle (bad magic %q)", gotMagic)
	}

	var hdrLen uint32
	if err := binary.Read(reader, binary.LittleEndian, &hdrLen); err != nil {
		return nil, fmt.Errorf("error reading bundle metadata length: %w", err)
	}
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(reader, hdrBytes); err != nil {
		return nil, fmt.Errorf("error reading bundle metadata: %w", err)
	}

	hdr := header{}
	if err := yaml.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, fmt.Errorf("error decoding bundle metadata: %w", err)
	}

	f := &File{
		Identifier: hdr.Identifier,
		SessionID:  hdr.SessionID,
		Session:    hdr.Session,
		Subject:    hdr.Subject,
		Hardware:   hdr.Hardware,
		Flags:      hdr.Flags,
		Events:     hdr.Events,
	}

	for _, sh := range hdr.Series {
		var blockLen uint32
		if err := binary.Read(reader, binary.LittleEndian, &blockLen); err != nil {
			return nil, fmt.Errorf("series %q: error reading block length: %w", sh.Name, err)
		}
		block := make([]byte, blockLen)
		if _, err := io.ReadFull(reader, block); err != nil {
			return nil, fmt.Errorf("series %q: error reading sample block: %w", sh.Name, err)
		}

		data, err := decompressSamples(block, sh.Samples)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", sh.Name, err)
		}

		f.Series = append(f.Series, Series{
			Name:         sh.Name,
			Description:  sh.Description,
			Group:        sh.Group,
			Unit:         sh.Unit,
			Rate:         sh.Rate,
			StartingTime: sh.StartingTime,
			Data:         data,
		})
	}

	return f, nil
}

// ReadFile parses the session bundle at path.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening bundle: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func decompressSamples(block []byte, samples int) ([]float64, error) {
	zr, err := gzip.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, fmt.Errorf("error decompressing samples: %w", err)
	}
	defer zr.Close()

	raw := make([]byte, 8*samples)
	if _, err := io.ReadFull(zr, raw); err != nil {
		return nil, fmt.Errorf("error decompressing samples: %w", err)
	}

	data := make([]float64, samples)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}

	return data, nil
}
