// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package picoscope

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Reader reads trace files.
type Reader struct {
	r   io.ReadSeeker
	hdr *Header
}

// Open opens a trace file for reading.
func Open(r io.ReadSeeker) (*Reader, error) {
	reader := bufio.NewReader(r)

	b := make([]byte, 256)
	if _, err := io.ReadFull(reader, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	hdr := &Header{}
	hdr.Version = Version(strings.TrimSpace(string(b[0:8])))
	hdr.SessionID = strings.TrimSpace(string(b[8:88]))
	hdr.RecordingID = strings.TrimSpace(string(b[88:168]))
	dateStr := strings.TrimSpace(string(b[168:176]))
	timeStr := strings.TrimSpace(string(b[176:184]))

	// Parse start date and time
	startDate, err := time.Parse("02.01.06", dateStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing start date: %w", err)
	}
	startTime, err := time.Parse("15.04.05", timeStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing start time: %w", err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	headerBytes, err := strconv.Atoi(strings.TrimSpace(string(b[184:192])))
	if err != nil {
		return nil, fmt.Errorf("error parsing header bytes: %w", err)
	}
	hdr.HeaderBytes = headerBytes

	sampleRate, err := strconv.Atoi(strings.TrimSpace(string(b[192:200])))
	if err != nil {
		return nil, fmt.Errorf("error parsing sample rate: %w", err)
	}
	hdr.SampleRate = sampleRate

	blocks, err := strconv.Atoi(strings.TrimSpace(string(b[200:208])))
	if err != nil {
		return nil, fmt.Errorf("error parsing number of data blocks: %w", err)
	}
	hdr.Blocks = blocks

	blockSamples, err := strconv.Atoi(strings.TrimSpace(string(b[208:216])))
	if err != nil {
		return nil, fmt.Errorf("error parsing block samples: %w", err)
	}
	hdr.BlockSamples = blockSamples

	channelCount, err := strconv.Atoi(strings.TrimSpace(string(b[252:256])))
	if err != nil {
		return nil, fmt.Errorf("error parsing channel count: %w", err)
	}
	hdr.ChannelCount = channelCount

	// Read channel headers
	hdr.Channels = make([]Channel, channelCount)

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 16)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}

		hdr.Channels[i].Label = strings.TrimSpace(string(b))
	}

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 80)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}

		hdr.Channels[i].Role = strings.TrimSpace(string(b))
	}

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 8)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}

		hdr.Channels[i].Unit = strings.TrimSpace(string(b))
	}

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 8)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}

		hdr.Channels[i].PhysicalMin = parseFloat(b)
	}

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 8)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}

		hdr.Channels[i].PhysicalMax = parseFloat(b)
	}

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 8)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}

		hdr.Channels[i].DigitalMin = parseInt(b)
	}

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 8)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}

		hdr.Channels[i].DigitalMax = parseInt(b)
	}

	for i := 0; i < channelCount; i++ {
		b := make([]byte, 32)
		if _, err := io.ReadFull(reader, b); err != nil {
			return nil, fmt.Errorf("error reading channel headers: %w", err)
		}
	}

	return &Reader{
		r:   r,
		hdr: hdr,
	}, nil
}

// Header returns the parsed trace file header.
func (pr *Reader) Header() Header {
	return *pr.hdr
}

// ChannelReader reads continuous sample data for one channel of a trace file.
type ChannelReader struct {
	r            io.ReadSeeker
	hdr          *Header
	channelIndex int // Index of the channel to read
	currentBlock int // Current block being processed
	currentSamp  int // Current sample in the block
	blockSize    int // Total size of one data block
	chanOffset   int // Byte offset of the channel in a block
	blockSamples int // Number of samples per block for the channel
}

// Channel creates a new ChannelReader for the channel with the given
// digitizer label ("A" through "H").
func (pr *Reader) Channel(label string) (*ChannelReader, error) {
	channelIndex := -1
	for i, ch := range pr.hdr.Channels {
		if ch.Label == label {
			channelIndex = i
			break
		}
	}
	if channelIndex < 0 {
		return nil, fmt.Errorf("no channel with label %q in trace file", label)
	}

	return &ChannelReader{
		r:            pr.r,
		hdr:          pr.hdr,
		channelIndex: channelIndex,
		blockSize:    pr.hdr.ChannelCount * pr.hdr.BlockSamples * 2,
		chanOffset:   channelIndex * pr.hdr.BlockSamples * 2,
		blockSamples: pr.hdr.BlockSamples,
	}, nil
}

// Read fills the provided float64 slice with the physical values from the channel.
func (cr *ChannelReader) Read(data []float64) (int, error) {
	buf := make([]byte, 2)

	n := 0
	for n < len(data) {
		if cr.currentBlock >= cr.hdr.Blocks {
			return n, io.EOF // End of data blocks
		}

		// Calculate position to read the digital sample from
		pos := int64(cr.hdr.HeaderBytes) + int64(cr.currentBlock)*int64(cr.blockSize) + int64(cr.chanOffset) + int64(cr.currentSamp*2)
		if _, err := cr.r.Seek(pos, io.SeekStart); err != nil {
			return n, fmt.Errorf("error seeking to position: %w", err)
		}

		// Read the digital sample
		if _, err := io.ReadFull(cr.r, buf); err != nil {
			return n, fmt.Errorf("error reading sample data: %w", err)
		}
		digitalValue := int16(binary.LittleEndian.Uint16(buf))
		channel := cr.hdr.Channels[cr.channelIndex]
		data[n] = convertDigitalToPhysical(digitalValue, channel.DigitalMin, channel.DigitalMax, channel.PhysicalMin, channel.PhysicalMax)

		n++

		// Move to the next sample
		cr.currentSamp++
		if cr.currentSamp >= cr.blockSamples {
			cr.currentSamp = 0
			cr.currentBlock++
		}
	}

	return n, nil
}

// ReadAll reads every remaining sample of the channel.
func (cr *ChannelReader) ReadAll() ([]float64, error) {
	remaining := (cr.hdr.Blocks-cr.currentBlock)*cr.blockSamples - cr.currentSamp
	if remaining <= 0 {
		return nil, nil
	}

	data := make([]float64, remaining)
	n, err := cr.Read(data)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return data[:n], nil
}

// convertDigitalToPhysical converts a digital value from the data block to a physical value using the calibration factors.
func convertDigitalToPhysical(digital int16, dmin, dmax int, pmin, pmax float64) float64 {
	if dmax == dmin {
		return 0 // Avoid division by zero
	}
	return pmin + (float64(digital)-float64(dmin))*(pmax-pmin)/float64(dmax-dmin)
}

func parseFloat(b []byte) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0.0
	}
	return f
}

func parseInt(b []byte) int {
	i, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0
	}
	return i
}
