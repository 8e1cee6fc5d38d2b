//go:build linux

package walker

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
	"time"
)

// fileTimes reads creation and access times from the inode. Linux has no
// true birth time in syscall.Stat_t, so the inode change time stands in.
func fileTimes(info os.FileInfo) (created, accessed time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	created = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	accessed = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	return created, accessed
}

// fileOwner resolves the owning username, falling back to the numeric uid
// when the lookup fails (deleted accounts, foreign mounts).
func fileOwner(info os.FileInfo) string {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	uid := strconv.FormatUint(uint64(st.Uid), 10)
	if u, err := user.LookupId(uid); err == nil {
		return u.Username
	}
	return uid
}
