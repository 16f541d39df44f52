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
)

// Writer writes trace files.
type Writer struct {
	w      io.WriteSeeker
	hdr    *Header
	blocks int // Number of data blocks written so far.
}

// Create creates a new trace file writer that writes to the given writer.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	hdr.Blocks = -1 // Unknown number of data blocks (at this time).

	pw := &Writer{w: w, hdr: &hdr}

	// Write the initial header
	if err := pw.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return pw, nil
}

// Close finalizes the trace file by updating the header with the total number of data blocks.
func (pw *Writer) Close() error {
	// Finalize the header with the actual number of data blocks
	pw.hdr.Blocks = pw.blocks
	if err := pw.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	return nil
}

// WriteBlock writes a single co-sampled data block to the trace file. One
// slice of physical values per channel, each BlockSamples long.
func (pw *Writer) WriteBlock(channels [][]float64) error {
	if len(channels) != pw.hdr.ChannelCount {
		return fmt.Errorf("expected %d channels, got %d", pw.hdr.ChannelCount, len(channels))
	}

	for i, samples := range channels {
		if len(samples) != pw.hdr.BlockSamples {
			return fmt.Errorf("channel %s: expected %d samples, got %d",
				pw.hdr.Channels[i].Label, pw.hdr.BlockSamples, len(samples))
		}
	}

	writer := bufio.NewWriter(pw.w)

	// Write each channel's data
	for i := 0; i < pw.hdr.ChannelCount; i++ {
		channel := pw.hdr.Channels[i]
		for _, sample := range channels[i] {
			digitalValue := convertPhysicalToDigital(sample, channel.PhysicalMin, channel.PhysicalMax, channel.DigitalMin, channel.DigitalMax)
			if err := binary.Write(writer, binary.LittleEndian, int16(digitalValue)); err != nil {
				return err
			}
		}
	}

	// Ensure all data is flushed to the underlying writer
	if err := writer.Flush(); err != nil {
		return err
	}

	pw.blocks++
	return nil
}

// writeHeader writes the trace file header to the underlying writer.
func (pw *Writer) writeHeader() error {
	// Rewind to the beginning of the file.
	_, err := pw.w.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(pw.w)

	// Write version, session and recording IDs
	_, err = writer.WriteString(fmt.Sprintf("%-8s", pw.hdr.Version))
	if err != nil {
		return err
	}
	_, err = writer.WriteString(fmt.Sprintf("%-80s", pw.hdr.SessionID))
	if err != nil {
		return err
	}
	_, err = writer.WriteString(fmt.Sprintf("%-80s", pw.hdr.RecordingID))
	if err != nil {
		return err
	}

	// Write start date and time
	dateStr := pw.hdr.StartTime.Format("02.01.06")
	timeStr := pw.hdr.StartTime.Format("15.04.05")
	_, err = writer.WriteString(fmt.Sprintf("%-8s", dateStr))
	if err != nil {
		return err
	}
	_, err = writer.WriteString(fmt.Sprintf("%-8s", timeStr))
	if err != nil {
		return err
	}

	// Write header bytes, sample rate, data blocks, etc.
	pw.hdr.HeaderBytes = 256 + (pw.hdr.ChannelCount * 168)
	_, err = writer.WriteString(fmt.Sprintf("%-8d", pw.hdr.HeaderBytes))
	if err != nil {
		return err
	}

	_, err = writer.WriteString(fmt.Sprintf("%-8d", pw.hdr.SampleRate))
	if err != nil {
		return err
	}

	// Write the number of data blocks.
	_, err = writer.WriteString(fmt.Sprintf("%-8d", pw.hdr.Blocks))
	if err != nil {
		return err
	}

	// Write samples per channel per block.
	_, err = writer.WriteString(fmt.Sprintf("%-8d", pw.hdr.BlockSamples))
	if err != nil {
		return err
	}

	// Write 36 empty reserved bytes.
	_, err = writer.WriteString(fmt.Sprintf("%-36s", ""))
	if err != nil {
		return err
	}

	// Write channel count
	_, err = writer.WriteString(fmt.Sprintf("%-4d", pw.hdr.ChannelCount))
	if err != nil {
		return err
	}

	// Write channel details
	for _, channel := range pw.hdr.Channels {
		_, err = writer.WriteString(fmt.Sprintf("%-16s", channel.Label))
		if err != nil {
			return err
		}
	}

	for _, channel := range pw.hdr.Channels {
		_, err = writer.WriteString(fmt.Sprintf("%-80s", channel.Role))
		if err != nil {
			return err
		}
	}

	for _, channel := range pw.hdr.Channels {
		_, err = writer.WriteString(fmt.Sprintf("%-8s", channel.Unit))
		if err != nil {
			return err
		}
	}

	for _, channel := range pw.hdr.Channels {
		_, err = writer.WriteString(formatPhysicalValue(channel.PhysicalMin))
		if err != nil {
			return err
		}
	}

	for _, channel := range pw.hdr.Channels {
		_, err = writer.WriteString(formatPhysicalValue(channel.PhysicalMax))
		if err != nil {
			return err
		}
	}

	for _, channel := range pw.hdr.Channels {
		_, err = writer.WriteString(fmt.Sprintf("%-8d", channel.DigitalMin))
		if err != nil {
			return err
		}
	}

	for _, channel := range pw.hdr.Channels {
		_, err = writer.WriteString(fmt.Sprintf("%-8d", channel.DigitalMax))
		if err != nil {
			return err
		}
	}

	// Reserved for future use
	for range pw.hdr.Channels {
		_, err = writer.WriteString(fmt.Sprintf("%-32s", ""))
		if err != nil {
			return err
		}
	}

	// Ensure all data is flushed to the underlying writer
	return writer.Flush()
}

// convertPhysicalToDigital converts a physical value to a digital value using the calibration factors.
func convertPhysicalToDigital(physical float64, pmin, pmax float64, dmin, dmax int) int16 {
	if pmax == pmin {
		return 0 // Avoid division by zero
	}
	digital := ((physical - pmin) * (float64(dmax - dmin)) / (pmax - pmin)) + float64(dmin)
	return int16(digital)
}

func formatPhysicalValue(val float64) string {
	// Try with 2 decimal places
	s := fmt.Sprintf("%.2f", val)
	if len(s) > 8 {
		// Fall back to no decimal
		s = fmt.Sprintf("%.0f", val)
	}
	return fmt.Sprintf("%-8s", s)
}
