// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
)

// Serve runs fn until it returns or the process receives SIGINT or SIGTERM,
// which cancels the context passed to fn. The daemon is closed afterwards.
func (d *Daemon) Serve(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.logger.Info("Started.", slog.String("mode", d.Mode().String()))

	err := fn(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if ctx.Err() != nil {
		d.logger.Info("Shutting down.")
	}

	if closeErr := d.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close daemon: %w", closeErr)
	}
	return err
}
