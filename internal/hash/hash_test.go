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

package hash

import (
	"math"
	"testing"
)

type station struct {
	Lat, Lon float64
	Temp     *float64
}

func TestFingerprint(t *testing.T) {
	temp := 12.5
	a := []station{{Lat: 55, Lon: 12, Temp: &temp}}
	b := []station{{Lat: 55, Lon: 12, Temp: &temp}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Errorf("equal content should give equal fingerprints")
	}
	b[0].Lon = 12.0001
	if Fingerprint(a) == Fingerprint(b) {
		t.Errorf("changed content should change the fingerprint")
	}
	if Fingerprint(a, b) == Fingerprint(b, a) {
		t.Errorf("argument order should matter")
	}
}

func TestFingerprintNaN(t *testing.T) {
	x := []float64{1, math.NaN()}
	if Fingerprint(x) != Fingerprint([]float64{1, math.NaN()}) {
		t.Errorf("NaN values should hash consistently")
	}
	if Fingerprint(nil) == Fingerprint(x) {
		t.Errorf("nil should differ from content")
	}
}
