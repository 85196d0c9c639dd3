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

package run

import (
	"context"
	"fmt"
	"io"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/tombee/daemonkit/internal/config"
	"github.com/tombee/daemonkit/internal/daemon"
	"github.com/tombee/daemonkit/internal/log"
)

const (
	// ListenKey is the daemon config key holding the echo listen address.
	ListenKey = "listen"

	// DefaultListenAddr is used when ListenKey is not configured.
	DefaultListenAddr = "127.0.0.1:7007"
)

// Service is the echo daemon. Its listeners are bound by RootMain, before
// privileges are dropped, so privileged ports work when started as root.
type Service struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer

	echo    *EchoServer
	metrics *MetricsServer
}

// NewService creates the echo service. stdout and stderr receive the
// startup lines written once setup is complete.
func NewService(cfg *config.Config, stdout, stderr io.Writer) *Service {
	return &Service{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
	}
}

// ListenAddr returns the configured echo listen address.
func (s *Service) ListenAddr() string {
	if v, ok := s.cfg.Daemon.Extra[ListenKey].(string); ok && v != "" {
		return v
	}
	return DefaultListenAddr
}

// EchoAddr returns the bound echo address, or nil before setup.
func (s *Service) EchoAddr() net.Addr {
	if s.echo == nil {
		return nil
	}
	return s.echo.Addr()
}

// MetricsAddr returns the bound metrics address, or nil when disabled.
func (s *Service) MetricsAddr() net.Addr {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.Addr()
}

// RootMain binds the listeners.
func (s *Service) RootMain(ctx context.Context, d *daemon.Daemon) error {
	ln, err := net.Listen("tcp", s.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.ListenAddr(), err)
	}
	s.echo = NewEchoServer(ln, log.WithComponent(d.Logger(), "echo"))

	if addr := s.cfg.Metrics.Addr; addr != "" {
		mln, err := net.Listen("tcp", addr)
		if err != nil {
			ln.Close()
			s.echo = nil
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		s.metrics = NewMetricsServer(mln, log.WithComponent(d.Logger(), "metrics"))
	}
	return nil
}

// Setup runs the usual daemon setup with RootMain as the privileged step.
func (s *Service) Setup(ctx context.Context, d *daemon.Daemon) error {
	info := s.cfg.ProcessInfo()
	info.RootMain = s.RootMain

	if err := d.UsualSetup(ctx, info); err != nil {
		s.closeListeners()
		return err
	}

	fmt.Fprintln(s.stdout, "Print to stdout")
	fmt.Fprintln(s.stderr, "Print to stderr")
	return nil
}

// Serve runs the servers until ctx is cancelled or a signal arrives.
func (s *Service) Serve(ctx context.Context, d *daemon.Daemon) error {
	return d.Serve(ctx, func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.echo.Serve(ctx) })
		if s.metrics != nil {
			g.Go(func() error { return s.metrics.Serve(ctx) })
		}
		return g.Wait()
	})
}

// Run is Setup followed by Serve.
func (s *Service) Run(ctx context.Context, d *daemon.Daemon) error {
	if err := s.Setup(ctx, d); err != nil {
		return err
	}
	return s.Serve(ctx, d)
}

func (s *Service) closeListeners() {
	if s.echo != nil {
		s.echo.close()
	}
	if s.metrics != nil {
		s.metrics.ln.Close()
	}
}
