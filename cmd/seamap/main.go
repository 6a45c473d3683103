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

// Command seamap is a command-line interface for rendering ocean forecast
// overlays.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spatialmodel/seamap/seamaputil"
)

func main() {
	// Interrupting stops new rasters from starting; the ones in
	// progress finish and the summary is still logged.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := seamaputil.Root.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(-1)
	}
}
