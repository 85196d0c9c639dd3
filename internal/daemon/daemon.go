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
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tombee/daemonkit/internal/errlog"
	"github.com/tombee/daemonkit/internal/lifecycle"
	"github.com/tombee/daemonkit/internal/log"
)

// RootMainFunc runs with the process's original privileges, before they are
// dropped. Setup that needs root, such as binding a low port, belongs here.
type RootMainFunc func(ctx context.Context, d *Daemon) error

// ProcessInfo describes the daemon. Name, LogDir and RunDir are required.
type ProcessInfo struct {
	Name string
	// User and Group name the identity to switch to. Numeric ids are
	// accepted. Both default to Name.
	User   string
	Group  string
	LogDir string
	RunDir string

	RootMain RootMainFunc

	// Extra carries caller-defined settings.
	Extra map[string]any
}

func (p ProcessInfo) clone() ProcessInfo {
	p.Extra = maps.Clone(p.Extra)
	return p
}

// Spawner starts a detached process. lifecycle.Spawner implements it.
type Spawner interface {
	SpawnDetached(binary string, argv []string) (int, error)
}

// SyslogOpener connects to the system log with the given tag.
type SyslogOpener func(tag string) (log.NoticeWriter, error)

// Daemon holds the process-wide daemon state: the mode, the product name,
// directories, the caller's ProcessInfo and the logging tiers.
//
// A process normally has exactly one Daemon. Setup methods are meant to be
// called in order from the main goroutine; accessors are safe from anywhere.
type Daemon struct {
	stdio      lifecycle.Stdio
	spawner    Spawner
	openSyslog SyslogOpener
	identity   IdentitySwitcher
	now        func() time.Time
	console    io.Writer
	consoleCfg *log.Config
	level      slog.Leveler
	instanceID string

	swap   *log.SwapHandler
	logger *slog.Logger

	mu      sync.Mutex
	mode    Mode
	modeSet bool
	name    string
	runDir  string
	logDir  string
	info    *ProcessInfo

	syslog    slog.Handler
	syslogW   log.NoticeWriter
	syslogTag string
	file    *errlog.File
	rotator *errlog.Rotator
	watcher *errlog.Watcher
	lock    *lifecycle.InstanceLock

	// created lists files and directories made before privileges were
	// dropped; they are handed to the target identity.
	created []string
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithLogDir makes the log directory known before BasicSetup so a child can
// send stdout and stderr to the dire log immediately.
func WithLogDir(dir string) Option {
	return func(d *Daemon) { d.logDir = dir }
}

// WithStdio replaces the standard descriptor operations.
func WithStdio(s lifecycle.Stdio) Option {
	return func(d *Daemon) { d.stdio = s }
}

// WithSpawner replaces the process spawner.
func WithSpawner(s Spawner) Option {
	return func(d *Daemon) { d.spawner = s }
}

// WithSyslog replaces the system log connection.
func WithSyslog(open SyslogOpener) Option {
	return func(d *Daemon) { d.openSyslog = open }
}

// WithIdentity replaces the identity switching operations.
func WithIdentity(id IdentitySwitcher) Option {
	return func(d *Daemon) { d.identity = id }
}

// WithClock replaces the clock used by the error log.
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) { d.now = now }
}

// WithConsole sets the writer for foreground and pre-setup logging.
// Default: stderr.
func WithConsole(w io.Writer) Option {
	return func(d *Daemon) { d.console = w }
}

// WithLogConfig sets the console logging configuration.
// Default: log.FromEnv().
func WithLogConfig(cfg *log.Config) Option {
	return func(d *Daemon) { d.consoleCfg = cfg }
}

// WithLevel sets the minimum level of the syslog and file tiers.
// Default: debug.
func WithLevel(level slog.Leveler) Option {
	return func(d *Daemon) { d.level = level }
}

// WithInstanceID overrides the generated instance id.
func WithInstanceID(id string) Option {
	return func(d *Daemon) { d.instanceID = id }
}

// New creates a Daemon. Until BasicSetup runs, its logger writes to the
// console.
func New(opts ...Option) *Daemon {
	d := &Daemon{
		stdio:      lifecycle.SystemStdio{},
		spawner:    lifecycle.NewSpawner(),
		openSyslog: log.OpenSyslog,
		identity:   systemIdentity{},
		now:        time.Now,
		console:    os.Stderr,
		level:      slog.LevelDebug,
		instanceID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.consoleCfg == nil {
		d.consoleCfg = log.FromEnv()
	}

	d.swap = log.NewSwapHandler(d.consoleHandler())
	d.logger = slog.New(d.swap)
	return d
}

func (d *Daemon) consoleHandler() slog.Handler {
	cfg := *d.consoleCfg
	cfg.Output = d.console
	return log.NewHandler(&cfg)
}

// Logger returns the daemon logger. It stays valid as logging tiers change.
func (d *Daemon) Logger() *slog.Logger {
	return d.logger
}

// InstanceID returns the id written into restart markers and syslog lines.
func (d *Daemon) InstanceID() string {
	return d.instanceID
}

// Mode returns the current mode. It is ModeForeground until BasicSetup.
func (d *Daemon) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *Daemon) isChild() bool {
	return d.Mode() == ModeChild
}

func (d *Daemon) setMode(m Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.modeSet {
		return ErrAlreadySetup
	}
	d.mode = m
	d.modeSet = true
	return nil
}

// Name returns the product name.
func (d *Daemon) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// SetProductName sets the product name used for syslog and the pid file.
func (d *Daemon) SetProductName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

// RunDir returns the run directory.
func (d *Daemon) RunDir() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runDir
}

// LogDir returns the log directory.
func (d *Daemon) LogDir() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logDir
}

// Info returns a copy of the ProcessInfo stored by UsualSetup.
func (d *Daemon) Info() (ProcessInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.info == nil {
		return ProcessInfo{}, false
	}
	return d.info.clone(), true
}

func (d *Daemon) setInfo(info ProcessInfo) {
	info = info.clone()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.info = &info
}

// PIDFile returns the lock file path for name in runDir.
func PIDFile(runDir, name string) string {
	return filepath.Join(runDir, name+".pid")
}

// Close stops rotation and the log watcher, releases the instance lock and
// closes the primary log. Process exit does all of this implicitly.
func (d *Daemon) Close() error {
	d.stopLogMaintenance()

	if d.lock != nil && d.lock.Held() {
		if err := d.lock.Release(); err != nil {
			return err
		}
		lockHeld.Set(0)
	}
	if d.file != nil {
		d.swap.Swap(d.consoleHandler())
		return d.file.Close()
	}
	return nil
}

func (d *Daemon) stopLogMaintenance() {
	if d.rotator != nil {
		d.rotator.Stop()
		d.rotator = nil
	}
	if d.watcher != nil {
		d.watcher.Stop()
		d.watcher = nil
	}
}
