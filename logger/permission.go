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

import "sync/atomic"

// Permission implementations indicate whether the environment making a log
// request is allowed to create new log entries.
type Permission interface {
	AllowLogging() bool
}

type allow struct{}

func (allow) AllowLogging() bool {
	return true
}

// Allow permits the log entry unconditionally.
var Allow Permission = allow{}

var verbose atomic.Bool

type verbosePermission struct{}

func (verbosePermission) AllowLogging() bool {
	return verbose.Load()
}

// Verbose permits the log entry only after SetVerbose(true). Used for entries
// that are made once per relocation or per symbol.
var Verbose Permission = verbosePermission{}

// SetVerbose enables or disables entries logged with the Verbose permission.
func SetVerbose(v bool) {
	verbose.Store(v)
}
