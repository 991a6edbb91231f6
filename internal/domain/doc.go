// Package domain holds the core wildfire reconciliation model: raw incident
// records from three schema eras (2002-2005, 2006-2015, 2016-2018), the
// canonical Event they standardize into, duplicate resolution, wildfire
// filtering, climate window alignment, and training-feature flattening.
//
// Everything here is pure and in-memory. Network and storage concerns live in
// the adapter packages; the pipeline package wires the two together.
package domain
