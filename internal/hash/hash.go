/*
Copyright © 2025 the Seamap authors.
This file is part of Seamap.

Seamap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Seamap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Seamap.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash computes content fingerprints that tie derived artifacts,
// such as the water point cache, to the inputs they were built from.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Fingerprint returns a hex key that changes whenever the content of
// any of the objects changes. The order of objects matters.
func Fingerprint(objects ...interface{}) string {
	h := fnv.New128a()
	for i, o := range objects {
		fmt.Fprintf(h, "#%d:", i)
		write(h, o)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// write adds o to h. Values gob cannot encode, such as nil interfaces
// or types with unexported fields only, are printed with spew instead.
func write(h hash.Hash, o interface{}) {
	if o == nil {
		h.Write([]byte("<nil>"))
		return
	}
	if err := gob.NewEncoder(h).Encode(o); err == nil {
		return
	}
	printer.Fprintf(h, "%#v", o)
}
