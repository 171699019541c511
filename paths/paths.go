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

package paths

import (
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"
)

// HomeEnv is the name of the environment variable that overrides the location
// of the resource directory.
const HomeEnv = "Z64OVL_HOME"

// names of the sub-directories in the resource directory.
const (
	Templates = "Templates"
	Headers   = "Headers"
)

// ResourcePath returns the resource string (representing the resource to be
// loaded) prepended with the resource directory.
func ResourcePath(resource ...string) string {
	p := make([]string, 0, len(resource)+1)
	p = append(p, BasePath())
	p = append(p, resource...)
	return filepath.Join(p...)
}

// BasePath returns the resource directory. Note that the existence of the
// directory named by the environment variable is not checked.
func BasePath() string {
	if home := env.Str(HomeEnv); home != "" {
		return home
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		if fi, err := os.Stat(filepath.Join(dir, Templates)); err == nil && fi.IsDir() {
			return dir
		}
	}

	return "."
}
