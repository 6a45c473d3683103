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

package seamap

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid pipeline setting, such as a malformed
// color scale, a non-positive resolution, or a degenerate bounding box.
// Configuration errors abort the whole run because they would affect
// every unit of work.
type ConfigurationError struct {
	Field string // name of the offending setting
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("seamap: invalid configuration %s: %s", e.Field, e.Msg)
}

// EmptyFieldWarning reports that no scattered points were found for
// a (timestep, parameter) unit. The unit is skipped.
type EmptyFieldWarning struct {
	Parameter Parameter
	Timestamp string
}

func (e *EmptyFieldWarning) Error() string {
	return fmt.Sprintf("seamap: no %s data for %s", e.Parameter, e.Timestamp)
}

// InterpolationExhaustionError reports that the diffusive fill reached its
// iteration cap with cells still unresolved. It is never fatal; the remaining
// cells are filled from the nearest original sample.
type InterpolationExhaustionError struct {
	Iterations int // number of fill iterations performed
	Remaining  int // number of cells still unresolved
}

func (e *InterpolationExhaustionError) Error() string {
	return fmt.Sprintf("seamap: diffusive fill stopped after %d iterations with %d unresolved cells",
		e.Iterations, e.Remaining)
}

// GeometryUnavailableError reports that the water geometry is empty or
// missing. Output degrades to fully transparent rasters.
type GeometryUnavailableError struct {
	Reason string
}

func (e *GeometryUnavailableError) Error() string {
	return "seamap: water geometry unavailable: " + e.Reason
}

// IsWarning reports whether err is a soft failure that should be recorded
// but should not stop the batch.
func IsWarning(err error) bool {
	var empty *EmptyFieldWarning
	var exhausted *InterpolationExhaustionError
	var geometry *GeometryUnavailableError
	return errors.As(err, &empty) || errors.As(err, &exhausted) || errors.As(err, &geometry)
}

// IsConfigurationError reports whether err is, or wraps, a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
