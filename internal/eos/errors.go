package eos

import "go.trai.ch/zerr"

var (
	// ErrUnsupportedComposition means no builder is registered for the
	// requested ocean composition.
	ErrUnsupportedComposition = zerr.New("unsupported ocean composition")

	// ErrInvalidRange means a requested P or T range is degenerate.
	ErrInvalidRange = zerr.New("physically invalid sample range")

	// ErrNoFreezePressure means no phase transition was found inside the
	// pressure bracket in either solver mode.
	ErrNoFreezePressure = zerr.New("no freezing pressure found in bracket")

	// ErrNoUnderplatePressure means the bottom temperature is inconsistent
	// with the assumed high-pressure ice underplate.
	ErrNoUnderplatePressure = zerr.New("no underplate transition pressure found")

	// ErrNoFreezeTemperature means no melting point was found above the
	// query temperature within the search range.
	ErrNoFreezeTemperature = zerr.New("no freezing temperature found in range")
)
