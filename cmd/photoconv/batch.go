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
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dombeck-lab/photoconv/metadata"
	"github.com/dombeck-lab/photoconv/processed"
	"github.com/dombeck-lab/photoconv/session"
)

var (
	batchRoot      string
	batchMetadata  []string
	batchProcessed string
	batchOutDir    string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Convert every session under a data root",
	Long: `Walk a data root laid out as <root>/<subject>/<session>/ and convert every
session folder found. A failing recording is logged and skipped; the walk
continues with the next one.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchRoot, "root", envDefault("PHOTOCONV_DATA_ROOT", ""), "Data root holding <subject>/<session> folders")
	batchCmd.Flags().StringSliceVarP(&batchMetadata, "metadata", "m", nil, "Metadata YAML documents, base first then overrides")
	batchCmd.Flags().StringVarP(&batchProcessed, "processed", "p", envDefault("PHOTOCONV_PROCESSED_DB", ""), "Path to the processed photometry table (DuckDB)")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", envDefault("PHOTOCONV_OUTPUT_DIR", "./nwbfiles"), "Directory for the output bundles")

	_ = batchCmd.MarkFlagRequired("metadata")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchRoot == "" {
		return fmt.Errorf("no data root given (use --root or PHOTOCONV_DATA_ROOT)")
	}
	if batchProcessed == "" {
		return fmt.Errorf("no processed table given (use --processed or PHOTOCONV_PROCESSED_DB)")
	}

	doc, err := metadata.Load(batchMetadata...)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	store, err := processed.OpenStore(batchProcessed)
	if err != nil {
		return err
	}
	defer store.Close()

	conv := &session.Converter{Metadata: doc, Store: store}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	result, err := conv.ConvertAll(cmd.Context(), batchRoot, batchOutDir, log)
	if err != nil {
		return err
	}

	fmt.Printf("Converted %d recordings (%d failed)\n", result.Converted, result.Failed)
	return nil
}
