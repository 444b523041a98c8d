// Copyright (c) 2026 The hnscore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the package-wide logger used by covenant. By default
// logging is disabled.
func UseLogger(logger slog.Logger) {
	log = logger
}
