package link

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// BaudRate is fixed by the radio firmware.
const BaudRate = 38400

// OpenSerial opens a serial port at 38400 8N1.
func OpenSerial(name string) (io.ReadWriteCloser, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("reset %s: %w", name, err)
	}
	return port, nil
}

// ListSerial lists the serial ports present on the host.
func ListSerial() ([]string, error) {
	return serial.GetPortsList()
}
