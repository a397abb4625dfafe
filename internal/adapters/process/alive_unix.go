//go:build !windows

package process

import "golang.org/x/sys/unix"

func alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
