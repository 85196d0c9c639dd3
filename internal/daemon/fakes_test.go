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
	"errors"
	"strings"
	"sync"

	"github.com/tombee/daemonkit/internal/lifecycle"
	"github.com/tombee/daemonkit/internal/log"
)

// The production collaborators exist on every platform.
var (
	_ IdentitySwitcher = systemIdentity{}
	_ Spawner          = (*lifecycle.Spawner)(nil)
	_ lifecycle.Stdio  = lifecycle.SystemStdio{}
	_ SyslogOpener     = log.OpenSyslog
)

type fakeStdio struct {
	mu  sync.Mutex
	ops []string
	err error
}

func (f *fakeStdio) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
	return f.err
}

func (f *fakeStdio) CloseStdin() error              { return f.record("close stdin") }
func (f *fakeStdio) CloseStdout() error             { return f.record("close stdout") }
func (f *fakeStdio) CloseStderr() error             { return f.record("close stderr") }
func (f *fakeStdio) ReopenStdout(path string) error { return f.record("stdout " + path) }
func (f *fakeStdio) ReopenStderr(path string) error { return f.record("stderr " + path) }

func (f *fakeStdio) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

type fakeSpawner struct {
	binary string
	argv   []string
	err    error
}

func (f *fakeSpawner) SpawnDetached(binary string, argv []string) (int, error) {
	f.binary = binary
	f.argv = argv
	if f.err != nil {
		return 0, f.err
	}
	return 4242, nil
}

type fakeSyslog struct {
	mu   sync.Mutex
	tag  string
	msgs []string
}

func (f *fakeSyslog) open(tag string) (log.NoticeWriter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tag = tag
	return f, nil
}

func (f *fakeSyslog) Notice(msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeSyslog) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.msgs, "\n")
}

func unavailableSyslog(string) (log.NoticeWriter, error) {
	return &log.StreamNotice{W: discardWriter{}, Tag: "test"}, errors.New("no syslog")
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeIdentity struct {
	chowns    []string
	groups    []int
	gid, uid  int
	setgidErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{gid: -1, uid: -1}
}

func (f *fakeIdentity) Chown(path string, uid, gid int) error {
	f.chowns = append(f.chowns, path)
	return nil
}

func (f *fakeIdentity) Setgroups(gids []int) error {
	f.groups = gids
	return nil
}

func (f *fakeIdentity) Setgid(gid int) error {
	if f.setgidErr != nil {
		return f.setgidErr
	}
	f.gid = gid
	return nil
}

func (f *fakeIdentity) Setuid(uid int) error {
	f.uid = uid
	return nil
}
