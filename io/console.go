// Package io provides the console device that receives syscall output
// from the MIPS emulator.
package io

import (
	"fmt"
	"io"
)

// Console writes syscall output to a byte stream, one value per line.
type Console struct {
	Output io.Writer // Destination of printed values.

	printed int
}

// NewConsole returns a console writing to output.
func NewConsole(output io.Writer) *Console {
	return &Console{Output: output}
}

// PrintInt writes a signed integer, followed by a newline.
func (con *Console) PrintInt(value int32) (err error) {
	if con.Output == nil {
		err = ErrOutputMissing
		return
	}

	_, err = fmt.Fprintf(con.Output, "%d\n", value)
	if err != nil {
		return
	}

	con.printed++
	return
}

// Printed returns the number of values written since the last Rewind.
func (con *Console) Printed() int {
	return con.printed
}

// Rewind resets the printed value counter.
func (con *Console) Rewind() {
	con.printed = 0
}
