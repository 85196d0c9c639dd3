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
	"io"
	"log/slog"

	"github.com/tombee/daemonkit/internal/errlog"
	"github.com/tombee/daemonkit/internal/lifecycle"
	"github.com/tombee/daemonkit/internal/log"
)

// Outcome tells the entry point what to do after a setup step.
type Outcome struct {
	// Args is the argument list to continue with, in the
	// {executable, script, args...} shape.
	Args []string
	// Exit is set when the process should terminate with Code.
	Exit bool
	Code int
}

// Continue returns an Outcome that carries on with args.
func Continue(args []string) Outcome {
	return Outcome{Args: args}
}

// Terminate returns an Outcome that ends the process with code.
func Terminate(code int) Outcome {
	return Outcome{Exit: true, Code: code}
}

// Exit ends the process when o says so and returns otherwise.
func Exit(o Outcome) {
	if !o.Exit {
		return
	}
	osExit(o.Code)
	panic("daemon: exit returned")
}

// BasicSetup resolves the mode from argv, or from the process arguments when
// argv is nil, and performs the mode transition:
//
//   - parent: spawn the child detached and return Terminate(0)
//   - child: point stdio at /dev/null (or the dire log when the log directory
//     is already known), switch logging to syslog and return Continue
//   - foreground: return Continue
//
// It must run before any directory is created or lock taken.
func (d *Daemon) BasicSetup(argv []string) (Outcome, error) {
	if argv == nil {
		var err error
		if argv, err = DefaultArgv(); err != nil {
			return Outcome{}, err
		}
	}

	args, err := ParseArgs(argv)
	if err != nil {
		return Outcome{}, err
	}
	if err := d.setMode(args.Mode); err != nil {
		return Outcome{}, err
	}
	d.SetProductName(ProductNameFromScript(args.Script))
	modeInfo.WithLabelValues(args.Mode.String()).Set(1)

	switch args.Mode {
	case ModeParent:
		return d.spawnChild(args)
	case ModeChild:
		d.detach()
		recordStep("basic", "ok")
		return Continue(args.Argv()), nil
	default:
		recordStep("basic", "ok")
		return Continue(args.Argv()), nil
	}
}

func (d *Daemon) spawnChild(args InvocationArgs) (Outcome, error) {
	childArgv := make([]string, 0, len(args.Args)+2)
	childArgv = append(childArgv, args.Script, ModeFlag+ModeChild.String())
	childArgv = append(childArgv, args.Args...)

	pid, err := d.spawner.SpawnDetached(args.Executable, childArgv)
	if err != nil {
		recordStep("spawn", "error")
		return Outcome{}, newExitError("failed to spawn daemon child", err)
	}

	recordStep("spawn", "ok")
	d.logger.Debug("spawned daemon child", slog.Int(log.PIDKey, pid))
	return Terminate(ExitSuccess), nil
}

// detach closes the standard descriptors and installs the syslog tier.
// Failures are reported on syslog once it is up.
func (d *Daemon) detach() {
	var errs []error
	for _, step := range []func() error{d.stdio.CloseStdin, d.stdio.CloseStdout, d.stdio.CloseStderr} {
		if err := step(); err != nil {
			errs = append(errs, err)
		}
	}

	if dir := d.LogDir(); dir != "" {
		if err := d.redirectDire(dir); err != nil {
			errs = append(errs, err)
		}
	}

	d.installSyslog()

	if err := errors.Join(errs...); err != nil {
		d.logger.Error("failed to detach standard descriptors", log.Error(err))
	}
}

// installSyslog routes every level to the system log, tagged with the
// product name.
func (d *Daemon) installSyslog() {
	tag := d.Name()
	w, err := d.openSyslog(tag)
	h := log.NewSyslogHandler(w, d.level).WithAttrs([]slog.Attr{
		slog.String("instance", d.instanceID),
	})
	prev := d.syslogW
	d.syslog, d.syslogW, d.syslogTag = h, w, tag
	d.swap.Swap(h)
	if c, ok := prev.(io.Closer); ok && prev != w {
		c.Close()
	}

	if err != nil {
		d.logger.Debug("syslog unavailable, using stderr", log.Error(err))
	}
}

// redirectDire sends stdout and stderr to the dire log in dir.
func (d *Daemon) redirectDire(dir string) error {
	created, err := lifecycle.EnsureDir(dir, 0755)
	if err != nil {
		return err
	}
	d.created = append(d.created, created...)

	path := errlog.DirePath(dir)
	if err := d.stdio.ReopenStdout(path); err != nil {
		return err
	}
	if err := d.stdio.ReopenStderr(path); err != nil {
		return err
	}
	d.created = append(d.created, path)
	return nil
}

// UsualSetup performs the standard setup sequence after BasicSetup:
//
//  1. child: send stdout and stderr to the dire log
//  2. store info and take the product name from it
//  3. run info.RootMain with the original privileges
//  4. child: drop privileges to info.User and info.Group
//  5. create and record the run and log directories
//  6. child: open the primary log and start rotation
//  7. child: acquire the instance lock
//
// Fatal failures are returned as *ExitError.
func (d *Daemon) UsualSetup(ctx context.Context, info ProcessInfo) error {
	if info.Name == "" || info.LogDir == "" || info.RunDir == "" {
		recordStep("usual", "error")
		return fmt.Errorf("%w: name, log dir and run dir are required", ErrMissingSetupInfo)
	}

	if d.isChild() {
		if err := d.redirectDire(info.LogDir); err != nil {
			d.logger.Error("failed to redirect to dire log", log.Error(err))
		}
	}

	d.setInfo(info)
	d.SetProductName(info.Name)
	if d.syslog != nil && d.syslogTag != d.Name() {
		d.installSyslog()
	}

	if info.RootMain != nil {
		if err := d.runRootMain(ctx, info.RootMain); err != nil {
			recordStep("root_main", "error")
			d.logger.Error("root main failed", log.Error(err))
			return newExitError("root main failed", fmt.Errorf("%w: %w", ErrRootMain, err))
		}
		recordStep("root_main", "ok")
	}

	d.SetUserAndGroup(info.User, info.Group)

	if err := d.SetRunDir(info.RunDir); err != nil {
		recordStep("usual", "error")
		return newExitError("failed to set run directory", err)
	}
	if err := d.SetLogDir(info.LogDir); err != nil {
		recordStep("usual", "error")
		return newExitError("failed to set log directory", err)
	}

	if err := d.LoggingSetup(ctx); err != nil {
		return newExitError("failed to set up logging", err)
	}

	if err := d.AcquireLock(); err != nil {
		return err
	}

	recordStep("usual", "ok")
	return nil
}

func (d *Daemon) runRootMain(ctx context.Context, fn RootMainFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, d)
}

// SetRunDir creates dir if needed and records it as the run directory.
func (d *Daemon) SetRunDir(dir string) error {
	if _, err := lifecycle.EnsureDir(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.runDir = dir
	return nil
}

// SetLogDir creates dir if needed and records it as the log directory.
func (d *Daemon) SetLogDir(dir string) error {
	if _, err := lifecycle.EnsureDir(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logDir = dir
	return nil
}

// LoggingSetup opens the primary error log, routes records to it and starts
// daily rotation and the external rotation watch. Info records keep going
// to syslog. It does nothing outside child mode and may be called again to
// reopen the log.
func (d *Daemon) LoggingSetup(ctx context.Context) error {
	if !d.isChild() {
		return nil
	}

	dir := d.LogDir()
	if dir == "" {
		recordStep("logging", "error")
		return fmt.Errorf("%w: log directory not set", ErrLogSetup)
	}
	if d.syslog == nil || d.syslogTag != d.Name() {
		d.installSyslog()
	}

	d.stopLogMaintenance()
	if d.file == nil || d.file.Dir() != dir {
		d.file = errlog.New(dir,
			errlog.WithStdio(d.stdio),
			errlog.WithClock(d.now),
			errlog.WithInstanceID(d.instanceID),
		)
	}

	if err := d.file.Open(); err != nil {
		recordStep("logging", "error")
		d.reportFatal("failed to open error log", err)
		return fmt.Errorf("%w: %w", ErrLogSetup, err)
	}

	fileHandler := slog.NewTextHandler(d.file, &slog.HandlerOptions{Level: d.level})
	d.swap.Swap(log.NewLevelRouter(fileHandler, map[slog.Level]slog.Handler{
		slog.LevelInfo: d.syslog,
	}))

	d.rotator = errlog.NewRotator(d.file, d.logger)
	d.rotator.Start()

	watcher, err := errlog.NewWatcher(d.file, d.logger)
	if err != nil {
		d.logger.Warn("external log rotation will not be detected", log.Error(err))
	} else {
		d.watcher = watcher
		d.watcher.Start(ctx)
	}

	recordStep("logging", "ok")
	return nil
}

// reportFatal logs to syslog and to stderr, which in child mode is the dire
// log.
func (d *Daemon) reportFatal(msg string, err error) {
	h := log.FanoutHandler{d.syslog, slog.NewTextHandler(d.console, nil)}
	slog.New(h).Error(msg, log.Error(err))
}

// AcquireLock takes the instance lock on <run dir>/<name>.pid. It does
// nothing outside child mode. Failure is fatal for the caller.
func (d *Daemon) AcquireLock() error {
	if !d.isChild() {
		return nil
	}

	path := PIDFile(d.RunDir(), d.Name())
	if d.lock == nil || d.lock.Path() != path {
		d.lock = lifecycle.NewInstanceLock(path)
	}

	held, err := d.lock.Acquire()
	if err != nil || !held {
		recordStep("lock", "error")
		d.logger.Info("Could not acquire lockfile: " + path)

		cause := ErrLockHeld
		if err != nil {
			cause = fmt.Errorf("%w: %w", ErrLockHeld, err)
		}
		return newExitError("could not acquire lockfile: "+path, cause)
	}

	lockHeld.Set(1)
	recordStep("lock", "ok")
	return nil
}
