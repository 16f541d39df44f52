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
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photoconv",
	Short: "Convert fiber photometry sessions to standardized session bundles",
	Long: `photoconv converts lab-acquired fiber photometry sessions (raw digitizer
trace files plus the pre-processed photometry table) into standardized
session bundles, driven by declarative YAML metadata documents.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Flag defaults may come from a .env file next to the working
	// directory.
	_ = godotenv.Load()
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
