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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gohunk/config"
	"github.com/jetsetilly/gohunk/test"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	// missing file gives the defaults
	cfg, err := config.Load(filepath.Join(dir, "missing.toml"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, cfg, config.Default())

	fn := filepath.Join(dir, config.Filename)
	test.DemandSuccess(t, os.WriteFile(fn, []byte("base_address = 0x00200000\npadding = 8\n"), 0o600))

	cfg, err = config.Load(fn)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, cfg, config.Config{BaseAddress: 0x00200000, Padding: 8})

	// unknown keys are an error
	test.DemandSuccess(t, os.WriteFile(fn, []byte("base = 0x1000\n"), 0o600))
	_, err = config.Load(fn)
	test.ExpectFailure(t, err)

	// badly formed file
	test.DemandSuccess(t, os.WriteFile(fn, []byte("padding = \n"), 0o600))
	_, err = config.Load(fn)
	test.ExpectFailure(t, err)
}

func TestSave(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "sub", config.Filename)

	cfg := config.Config{
		BaseAddress:     0x1000,
		Padding:         4,
		ForceLongRelocs: true,
		EchoLog:         true,
	}
	test.DemandSuccess(t, config.Save(fn, cfg))

	loaded, err := config.Load(fn)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, loaded, cfg)
}
