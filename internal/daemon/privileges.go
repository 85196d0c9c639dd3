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
	"fmt"
	"log/slog"
	"os/user"
	"strconv"
)

// IdentitySwitcher changes file ownership and the process identity.
type IdentitySwitcher interface {
	Chown(path string, uid, gid int) error
	Setgroups(gids []int) error
	Setgid(gid int) error
	Setuid(uid int) error
}

// lookupUser resolves a user name or numeric uid.
func lookupUser(name string) (int, error) {
	if uid, err := strconv.Atoi(name); err == nil {
		return uid, nil
	}
	u, err := user.Lookup(name)
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(u.Uid)
}

// lookupGroup resolves a group name or numeric gid.
func lookupGroup(name string) (int, error) {
	if gid, err := strconv.Atoi(name); err == nil {
		return gid, nil
	}
	g, err := user.LookupGroup(name)
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(g.Gid)
}

// SetUserAndGroup switches the process to userName and groupName. The user
// defaults to the product name and the group to the user. Files created
// during setup are handed to the new identity first. It does nothing outside
// child mode, and every failure is ignored: a daemon started without root
// simply keeps running as itself.
func (d *Daemon) SetUserAndGroup(userName, groupName string) {
	if !d.isChild() {
		return
	}

	if userName == "" {
		userName = d.Name()
	}
	if groupName == "" {
		groupName = userName
	}
	logger := d.logger.With(slog.String("user", userName), slog.String("group", groupName))

	uid, uidErr := lookupUser(userName)
	gid, gidErr := lookupGroup(groupName)
	if uidErr != nil {
		uid = -1
		recordPrivilegeFailure("lookup_user")
		logger.Debug("cannot resolve user", "error", uidErr)
	}
	if gidErr != nil {
		gid = -1
		recordPrivilegeFailure("lookup_group")
		logger.Debug("cannot resolve group", "error", gidErr)
	}

	if uidErr == nil || gidErr == nil {
		for _, path := range d.created {
			if err := d.identity.Chown(path, uid, gid); err != nil {
				recordPrivilegeFailure("chown")
				logger.Debug("cannot change owner", "path", path, "error", err)
			}
		}
	}
	d.created = nil

	if gidErr == nil {
		if err := d.identity.Setgroups([]int{gid}); err != nil {
			recordPrivilegeFailure("setgroups")
			logger.Debug("cannot set supplementary groups", "error", err)
		}
		if err := d.identity.Setgid(gid); err != nil {
			recordPrivilegeFailure("setgid")
			logger.Debug("cannot set group", "error", fmt.Errorf("gid %d: %w", gid, err))
		}
	}
	if uidErr == nil {
		if err := d.identity.Setuid(uid); err != nil {
			recordPrivilegeFailure("setuid")
			logger.Debug("cannot set user", "error", fmt.Errorf("uid %d: %w", uid, err))
		}
	}
}
