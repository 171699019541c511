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

package pipeline

import (
	"github.com/kballard/go-shellquote"
	"github.com/xyproto/env/v2"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/paths"
)

// names of the environment variables that configure the pipeline.
const (
	EnvCC      = "Z64OVL_CC"
	EnvAS      = "Z64OVL_AS"
	EnvLD      = "Z64OVL_LD"
	EnvCFlags  = "Z64OVL_CFLAGS"
	EnvASFlags = "Z64OVL_ASFLAGS"
	EnvLDFlags = "Z64OVL_LDFLAGS"
)

// default tool names. each must be in the PATH unless overridden by the
// environment.
const (
	DefaultCC = "clang"
	DefaultAS = "mips64-elf-as"
	DefaultLD = "mips64-elf-ld"
)

// ConfigError is the pattern for an environment variable that cannot be used.
const ConfigError = "pipeline: %s: %v"

// Config is the location of the external tools and the resource directory.
type Config struct {
	// the resource directory containing the Headers and Templates directories
	Home string

	CC string
	AS string
	LD string

	// additional flags for each tool. placed before the input files
	CFlags  []string
	ASFlags []string
	LDFlags []string
}

// NewConfig creates a Config from the environment. Flag variables are split
// according to the quoting rules of the shell.
func NewConfig() (Config, error) {
	cfg := Config{
		Home: paths.BasePath(),
		CC:   env.Str(EnvCC, DefaultCC),
		AS:   env.Str(EnvAS, DefaultAS),
		LD:   env.Str(EnvLD, DefaultLD),
	}

	var err error

	cfg.CFlags, err = flags(EnvCFlags)
	if err != nil {
		return Config{}, err
	}
	cfg.ASFlags, err = flags(EnvASFlags)
	if err != nil {
		return Config{}, err
	}
	cfg.LDFlags, err = flags(EnvLDFlags)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func flags(name string) ([]string, error) {
	f, err := shellquote.Split(env.Str(name))
	if err != nil {
		return nil, curated.Errorf(ConfigError, name, err)
	}
	return f, nil
}
