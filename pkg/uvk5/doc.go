// Package uvk5 speaks the clone-mode command set of Quansheng UV-K5 family
// radios. A Radio implements clone.Device so the sync engine can move the
// EEPROM image block by block.
package uvk5
