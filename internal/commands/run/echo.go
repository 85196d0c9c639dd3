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
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/tombee/daemonkit/internal/log"
)

// EchoServer writes back every byte it receives on each connection.
type EchoServer struct {
	ln     net.Listener
	logger *slog.Logger

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewEchoServer creates an echo server on an already bound listener.
func NewEchoServer(ln net.Listener, logger *slog.Logger) *EchoServer {
	return &EchoServer{
		ln:     ln,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Addr returns the listener address.
func (s *EchoServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until ctx is cancelled. Open connections are
// closed and drained before it returns.
func (s *EchoServer) Serve(ctx context.Context) error {
	s.logger.Info("echo server starting", slog.String("listen_addr", s.ln.Addr().String()))

	stop := context.AfterFunc(ctx, s.close)
	defer stop()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.close()
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info("echo server stopped")
				return nil
			}
			return err
		}

		if !s.track(conn) {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *EchoServer) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *EchoServer) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Debug("connection opened", slog.String("remote", remote))

	n, err := io.Copy(conn, conn)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("connection failed", slog.String("remote", remote), log.Error(err))
		return
	}
	s.logger.Debug("connection closed", slog.String("remote", remote), slog.Int64("bytes", n))
}

func (s *EchoServer) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ln.Close()
	for conn := range s.conns {
		conn.Close()
	}
}
