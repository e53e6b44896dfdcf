// Package layout overlays typed fields onto a flat memory image.
//
// A Schema is a table of FieldSpecs and record Arrays declared once and
// validated for non-overlap. Decoding and encoding touch exactly the
// bytes, or for bitfields the bits, owned by a spec; everything else in
// the image is left as it was.
package layout
