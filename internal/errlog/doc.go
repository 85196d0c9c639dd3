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
Package errlog manages a daemon's primary error log.

A File owns error.log in a log directory. Every open writes a restart marker,
and any output captured in dire-error.log since the previous run is spliced
into the primary log between recovery markers and the dire file removed:

	f := errlog.New("/var/log/echod", errlog.WithStdio(lifecycle.SystemStdio{}))
	if err := f.Open(); err != nil {
	    // Fatal: the daemon cannot run without its primary log
	}
	defer f.Close()

A Rotator renames error.log to error-<date>.log shortly after each UTC
midnight and reopens a fresh file. A Watcher reopens the file when something
outside the process removes or renames it.
*/
package errlog
