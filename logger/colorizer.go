// This file is part of z64ovl.
//
// z64ovl is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// z64ovl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with z64ovl.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"bytes"
	"hash/fnv"
	"io"
	"os"
)

const normalPen = "\033[0m"

// pens for log tags. the pen for a tag is chosen by hashing the tag so that a
// subsystem is always drawn in the same colour.
var pens = []string{
	"\033[36m", // cyan
	"\033[33m", // yellow
	"\033[32m", // green
	"\033[35m", // magenta
	"\033[34m", // blue
}

// Colorizer applies basic coloring rules to logging output. The tag of each
// entry is drawn in a colour and the detail is left as it is.
type Colorizer struct {
	out io.Writer
}

// NewColorizer is the preferred method if initialisation for the Colorizer type.
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{out: out}
}

// Write implements the io.Writer interface.
func (c Colorizer) Write(p []byte) (n int, err error) {
	i := bytes.Index(p, []byte(": "))
	if i < 0 {
		return c.out.Write(p)
	}

	h := fnv.New32a()
	h.Write(p[:i])
	pen := pens[int(h.Sum32()%uint32(len(pens)))]

	b := make([]byte, 0, len(p)+len(pen)+len(normalPen))
	b = append(b, pen...)
	b = append(b, p[:i]...)
	b = append(b, normalPen...)
	b = append(b, p[i:]...)

	if _, err := c.out.Write(b); err != nil {
		return 0, err
	}
	return len(p), nil
}

// EchoWriter returns the writer that should be given to SetEcho() for the
// file. If the file is a terminal the output will be colorized.
func EchoWriter(f *os.File) io.Writer {
	if isTerminal(f) {
		return NewColorizer(f)
	}
	return f
}
