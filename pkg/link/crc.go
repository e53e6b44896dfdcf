package link

import "github.com/sigurn/crc16"

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// CRC16 computes CRC-16/XMODEM (poly 0x1021, init 0, no reflection).
func CRC16(b []byte) uint16 {
	return crc16.Checksum(b, crcTable)
}
