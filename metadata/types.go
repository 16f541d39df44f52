// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2025 Dombeck Lab.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package metadata loads and validates the declarative YAML documents that
// drive a conversion run: general session/subject metadata and the fiber
// photometry hardware tables with their response series descriptors.
package metadata

import "time"

// Document is the merged view of the session metadata documents. It is
// constructed once per conversion run and never mutated afterwards.
type Document struct {
	Session Session `yaml:"Session"`
	Subject Subject `yaml:"Subject"`
	Ophys   Ophys   `yaml:"Ophys"`
}

// Session carries the session-level descriptive strings written verbatim
// into the output artifact.
type Session struct {
	Description  string    `yaml:"session_description"`
	StartTime    time.Time `yaml:"session_start_time"`
	Experimenter []string  `yaml:"experimenter,omitempty"`
	Lab          string    `yaml:"lab"`
	Institution  string    `yaml:"institution"`
	Keywords     []string  `yaml:"keywords,omitempty"`
}

// Subject describes the recorded animal.
type Subject struct {
	SubjectID   string `yaml:"subject_id"`
	Species     string `yaml:"species"`
	Sex         string `yaml:"sex"`
	Age         string `yaml:"age"`
	Genotype    string `yaml:"genotype"`
	Strain      string `yaml:"strain"`
	Description string `yaml:"description"`
}

// Ophys groups the optical physiology metadata.
type Ophys struct {
	FiberPhotometry FiberPhotometry `yaml:"FiberPhotometry"`
}

// FiberPhotometry holds the hardware reference tables and the response
// series descriptors that bind them together.
type FiberPhotometry struct {
	OpticalFibers      []OpticalFiber      `yaml:"OpticalFibers,omitempty"`
	ExcitationSources  []ExcitationSource  `yaml:"ExcitationSources,omitempty"`
	Photodetectors     []Photodetector     `yaml:"Photodetectors,omitempty"`
	BandOpticalFilters []BandOpticalFilter `yaml:"BandOpticalFilters,omitempty"`
	DichroicMirrors    []DichroicMirror    `yaml:"DichroicMirrors,omitempty"`
	Fluorophores       []Fluorophore       `yaml:"Fluorophores,omitempty"`
	ResponseSeries     []ResponseSeries    `yaml:"FiberPhotometryResponseSeries,omitempty"`
}

// OpticalFiber identifies one physical light-collection path.
type OpticalFiber struct {
	Name              string  `yaml:"name"`
	Description       string  `yaml:"description"`
	Manufacturer      string  `yaml:"manufacturer"`
	Model             string  `yaml:"model"`
	NumericalAperture float64 `yaml:"numerical_aperture"`
	CoreDiameterUm    float64 `yaml:"core_diameter_in_um"`
	DepthMm           float64 `yaml:"fiber_depth_in_mm"`
	Location          string  `yaml:"location"`
	Notes             string  `yaml:"notes"`
}

type ExcitationSource struct {
	Name             string  `yaml:"name"`
	Description      string  `yaml:"description"`
	Manufacturer     string  `yaml:"manufacturer"`
	Model            string  `yaml:"model"`
	IlluminationType string  `yaml:"illumination_type"`
	WavelengthNm     float64 `yaml:"excitation_wavelength_in_nm"`
}

type Photodetector struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Manufacturer string  `yaml:"manufacturer"`
	Model        string  `yaml:"model"`
	DetectorType string  `yaml:"detector_type"`
	WavelengthNm float64 `yaml:"detected_wavelength_in_nm"`
	Gain         float64 `yaml:"gain"`
}

type BandOpticalFilter struct {
	Name               string  `yaml:"name"`
	Description        string  `yaml:"description"`
	Manufacturer       string  `yaml:"manufacturer"`
	Model              string  `yaml:"model"`
	CenterWavelengthNm float64 `yaml:"center_wavelength_in_nm"`
	BandwidthNm        float64 `yaml:"bandwidth_in_nm"`
	FilterType         string  `yaml:"filter_type"`
}

type DichroicMirror struct {
	Name              string  `yaml:"name"`
	Description       string  `yaml:"description"`
	Manufacturer      string  `yaml:"manufacturer"`
	Model             string  `yaml:"model"`
	CutOnWavelengthNm float64 `yaml:"cut_on_wavelength_in_nm"`
}

// Fluorophore describes the indicator expressed at an injection site.
type Fluorophore struct {
	Name                 string    `yaml:"name"`
	Description          string    `yaml:"description"`
	Label                string    `yaml:"label"`
	EmissionWavelengthNm float64   `yaml:"emission_wavelength_in_nm"`
	InjectionLocation    string    `yaml:"injection_location"`
	InjectionCoordinates []float64 `yaml:"injection_coordinates_in_mm,omitempty"`
}

// ResponseSeries binds one (fiber, excitation source, fluorophore) triple to
// a named output series. The indices refer to rows of the reference tables
// above and must resolve to exactly one row each.
type ResponseSeries struct {
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	Fiber            int    `yaml:"fiber"`
	ExcitationSource int    `yaml:"excitation_source"`
	Fluorophore      int    `yaml:"fluorophore"`
}

// ResolvedSeries is a ResponseSeries with its hardware references resolved.
type ResolvedSeries struct {
	ResponseSeries
	FiberRef       OpticalFiber
	ExcitationRef  ExcitationSource
	FluorophoreRef Fluorophore
}
