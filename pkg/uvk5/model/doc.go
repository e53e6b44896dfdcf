// Package model is the semantic view over a UV-K5 memory image: channels,
// settings, DTMF, calibration and firmware features. Values are range
// checked here; the layout codec underneath only knows bytes and bits.
//
// A Model edits the image it wraps in place. Use it inside
// clone.Engine.Edit to get all-or-nothing changes.
package model
