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

package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/xyproto/env/v2"

	"github.com/z64tools/z64ovl/paths"
	"github.com/z64tools/z64ovl/test"
)

// setenv sets the environment variable for the duration of the test. the env
// package caches the environment so it is reloaded after every change
func setenv(t *testing.T, key string, value string) {
	t.Helper()
	t.Cleanup(env.Load)
	t.Setenv(key, value)
	env.Load()
}

func TestResourcePath(t *testing.T) {
	dir := t.TempDir()
	setenv(t, paths.HomeEnv, dir)

	test.ExpectEquality(t, paths.BasePath(), dir)
	test.ExpectEquality(t, paths.ResourcePath(paths.Templates, "Debug.ld"), filepath.Join(dir, "Templates", "Debug.ld"))
	test.ExpectEquality(t, paths.ResourcePath(), dir)
}

func TestDefaultPath(t *testing.T) {
	setenv(t, paths.HomeEnv, "")

	// the test binary does not live next to a Templates directory so the
	// current directory is used
	test.ExpectEquality(t, paths.BasePath(), ".")
	test.ExpectEquality(t, paths.ResourcePath(paths.Headers), "Headers")
}
