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

package loader

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/jetsetilly/gohunk/archivefs"
	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/hunk"
	"github.com/jetsetilly/gohunk/logger"
)

// Loader is used to specify the hunk file to load.
type Loader struct {
	// filename of the hunk file to load. can be a URL
	Filename string

	// expected hash of the loaded file. empty string indicates that the
	// hash is unknown and need not be validated. after a load operation the
	// value will be the hash of the loaded data
	Hash string

	// copy of the loaded data
	Data []byte

	// the kind of hunk file. valid after a successful Load()
	Type hunk.FileType
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{
		Filename: strings.TrimSpace(filename),
	}
}

// ShortName returns a shortened version of the Loader filename.
func (ld Loader) ShortName() string {
	s := path.Base(archivefs.TrimArchiveExt(ld.Filename))
	return strings.TrimSuffix(s, path.Ext(s))
}

// HasLoaded returns true if Load() has been successfully called.
func (ld Loader) HasLoaded() bool {
	return len(ld.Data) > 0
}

// Reader returns a new io.ReadSeeker for the loaded data.
func (ld Loader) Reader() io.ReadSeeker {
	return bytes.NewReader(ld.Data)
}

// Load the data. Loader filenames with a valid schema will use that method to
// load the data. Currently supported schemes are HTTP and local files.
func (ld *Loader) Load() error {
	if len(ld.Data) > 0 {
		return nil
	}

	scheme := "file"

	url, err := url.Parse(ld.Filename)
	if err == nil {
		scheme = url.Scheme
	}

	switch scheme {
	case "http":
		fallthrough
	case "https":
		resp, err := http.Get(ld.Filename)
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return curated.Errorf("loader: %v", fmt.Sprintf("http status %s", resp.Status))
		}

		ld.Data, err = io.ReadAll(resp.Body)
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}

	case "file":
		fallthrough

	case "":
		r, _, err := archivefs.Open(ld.Filename)
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}

		ld.Data, err = io.ReadAll(r)
		if err != nil {
			return curated.Errorf("loader: %v", err)
		}

	default:
		return curated.Errorf("loader: %v", fmt.Sprintf("unsupported URL scheme (%s)", scheme))
	}

	// generate hash
	hash := fmt.Sprintf("%x", sha1.Sum(ld.Data))

	// check for hash consistency
	if ld.Hash != "" && ld.Hash != hash {
		ld.Data = nil
		return curated.Errorf("loader: %v", "unexpected hash value")
	}

	// not generated hash
	ld.Hash = hash

	ld.Type, err = hunk.PeekType(ld.Reader())
	if err != nil {
		return curated.Errorf("loader: %v", err)
	}

	logger.Logf(logger.Allow, "loader", "%s: %v (%d bytes)", ld.ShortName(), ld.Type, len(ld.Data))

	return nil
}
