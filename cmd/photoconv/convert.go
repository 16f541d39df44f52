// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/dombeck-lab/photoconv/processed"
	"github.com/dombeck-lab/photoconv/session"
)

var (
	convertRecording string
	convertMetadata  []string
	convertProcessed string
	convertOutput    string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a single recording session",
	Long: `Convert one session folder of digitizer trace files into a standardized
session bundle. Metadata documents are applied in order, each overriding the
one before it.`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertRecording, "recording", "r", "", "Path to the session folder holding the sub-recording trace files")
	convertCmd.Flags().StringSliceVarP(&convertMetadata, "metadata", "m", nil, "Metadata YAML documents, base first then overrides")
	convertCmd.Flags().StringVarP(&convertProcessed, "processed", "p", envDefault("PHOTOCONV_PROCESSED_DB", ""), "Path to the processed photometry table (DuckDB)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Path of the output bundle")

	_ = convertCmd.MarkFlagRequired("recording")
	_ = convertCmd.MarkFlagRequired("metadata")
	_ = convertCmd.MarkFlagRequired("output")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertProcessed == "" {
		return fmt.Errorf("no processed table given (use --processed or PHOTOCONV_PROCESSED_DB)")
	}

	doc, err := metadata.Load(convertMetadata...)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	store, err := processed.OpenStore(convertProcessed)
	if err != nil {
		return err
	}
	defer store.Close()

	conv := &session.Converter{Metadata: doc, Store: store}

	fmt.Printf("Converting recording: %s\n", session.SessionID(convertRecording))
	if err := conv.Convert(cmd.Context(), convertRecording, convertOutput); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", convertOutput)

	return nil
}
