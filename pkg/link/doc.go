// Package link implements the UV-K5 serial link: payload obfuscation,
// CRC-16/XMODEM trailers, frame encoding and a blocking request/reply
// exchange over a single port.
//
// A frame on the wire looks like
//
//	AB CD <len:2 LE> obf(<type:2 LE><body-len:2 LE><body><crc:2 LE>) DC BA
//
// where len counts the message bytes (type, body length and body) but not
// the CRC trailer. The same XOR key stream covers the message and the
// trailer. The radio validates the CRC of every request it receives but
// fills the trailer of its own replies with junk, so reply CRC checking
// is opt-in.
package link
