// Package clone moves a whole memory image between host and radio,
// block by block, with per-block retries and read-after-write
// verification.
package clone
