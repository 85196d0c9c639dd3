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

/*
Package daemon turns a foreground program into a background service.

A program calls BasicSetup first thing in main. The --daemon=<mode> argument
selects what happens:

  - parent: a detached copy of the program is started with --daemon=child and
    the parent exits 0 without waiting
  - child: stdio is detached and logging goes to syslog
  - foreground (the default): nothing changes, logs go to the console

UsualSetup then runs the root-privileged entry point, drops privileges,
creates the run and log directories, opens the rotating error log and takes
the single-instance lock:

	d := daemon.New()
	outcome, err := d.BasicSetup(nil)
	if err != nil {
	    daemon.HandleExit(err)
	}
	daemon.Exit(outcome)

	err = d.UsualSetup(ctx, daemon.ProcessInfo{
	    Name:   "echod",
	    LogDir: "/var/log/echod",
	    RunDir: "/var/run/echod",
	})
	daemon.HandleExit(err)

# Logging

Daemon.Logger returns a logger whose destination follows setup. Before the
error log is open in child mode every record goes to syslog. Afterwards info
records stay on syslog and all other levels go to error.log. Output written
straight to stdout or stderr lands in dire-error.log until error.log opens,
and in error.log after that. The dire log is copied into error.log on the
next start, so a crash before logging came up is not lost.
*/
package daemon
