//go:build !windows

package commands

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"

	"djdeploy/internal/i18n"
)

// ownerOf names the user owning info. A state dir owned by root usually
// means djdeploy was once run with sudo.
func ownerOf(info os.FileInfo) string {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return i18n.T(i18n.MsgOwnerUnknown)
	}
	uid := strconv.FormatUint(uint64(stat.Uid), 10)
	u, err := user.LookupId(uid)
	if err != nil || u == nil || u.Username == "" {
		return fmt.Sprintf("UID %s", uid)
	}
	return u.Username
}
