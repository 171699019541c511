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

// Package logger is the central log for the toolchain. Log entries are
// tagged with the name of the subsystem that made them:
//
//	logger.Logf(logger.Allow, "RELOC", "%s: %d records", name, n)
//
// The log is kept in memory and is bounded. Adjacent entries that are the same
// are collapsed into one entry with a repeat count. The contents of the log can
// be written to any io.Writer with Write() or Tail(), and new entries can be
// echoed as they arrive with SetEcho().
//
// Whether an entry is made at all is decided by the Permission argument. The
// Allow value is the correct choice in almost every case.
package logger
