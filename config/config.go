// This file is part of Gohunk.
//
// Gohunk is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gohunk is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gohunk.  If not, see <https://www.gnu.org/licenses/>.

// Package config holds the defaults used by the gohunk command line tool. The
// defaults are read from a TOML file:
//
//	base_address = 0x00200000
//	padding = 8
//	force_long_relocs = false
//	echo_log = false
//
// A missing file is not an error. Command line flags override values from
// the file.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/paths"
)

// Filename is the name of the configuration file in the resource path.
const Filename = "gohunk.toml"

// Config is the content of the configuration file.
type Config struct {
	// address of the first segment when relocating
	BaseAddress uint32 `toml:"base_address"`

	// bytes between segments when relocating into one block
	Padding uint32 `toml:"padding"`

	// always write relocations in long form
	ForceLongRelocs bool `toml:"force_long_relocs"`

	// echo the central log to stderr
	EchoLog bool `toml:"echo_log"`
}

// Default returns the configuration used when there is no file.
func Default() Config {
	return Config{}
}

// ResourceFile returns the path of the configuration file.
func ResourceFile() string {
	return paths.ResourcePath(Filename)
}

// Load the configuration from the file. Keys that are not in the file keep
// their default value.
func Load(filename string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(filename, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), curated.Errorf("config: %v", err)
	}

	if u := md.Undecoded(); len(u) > 0 {
		return Default(), curated.Errorf("config: unknown key %q", u[0].String())
	}

	return cfg, nil
}

// Save the configuration to the file. The directory is created if necessary.
func Save(filename string, cfg Config) error {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return curated.Errorf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o700); err != nil {
		return curated.Errorf("config: %v", err)
	}

	if err := os.WriteFile(filename, b.Bytes(), 0o600); err != nil {
		return curated.Errorf("config: %v", err)
	}

	return nil
}
