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

package overlay

import (
	"fmt"
	"io"

	"github.com/z64tools/z64ovl/elfobj"
	"github.com/z64tools/z64ovl/logger"
)

// Report writes the result of a successful conversion to w. Porcelain output
// has one value per line with no other text.
func (ovl *Overlay) Report(w io.Writer, output string, opts Options) {
	if opts.Porcelain {
		fmt.Fprintln(w, output)
	} else {
		fmt.Fprintf(w, "Overlay written to %s.\n", output)
	}

	if !opts.ShowInitAddress || ovl.Init == nil {
		return
	}

	if opts.Porcelain {
		fmt.Fprintf(w, "%X\n", ovl.Init.Value)
	} else {
		fmt.Fprintf(w, "%s structure located at %X.\n", opts.initSymbol(), ovl.Init.Value)
	}
}

// Convert the ELF file at input into an overlay written to opts.Output. A
// report of the conversion is written to w.
//
// All validation happens before the output file is created.
func Convert(input string, opts Options, w io.Writer) error {
	obj, err := elfobj.Open(input)
	if err != nil {
		return err
	}

	ovl, err := Generate(obj, opts)
	if err != nil {
		return err
	}

	err = ovl.WriteFile(opts.Output)
	if err != nil {
		return err
	}

	logger.Logf(logger.Allow, "OVERLAY", "%s: written to %s", input, opts.Output)
	ovl.Report(w, opts.Output, opts)

	return nil
}
