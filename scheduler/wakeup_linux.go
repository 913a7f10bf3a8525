//go:build linux

package scheduler

import "golang.org/x/sys/unix"

// createWakeFD creates an eventfd for cross-thread wakeup (Linux). The same
// fd serves as both read and write end.
func createWakeFD() (read, write int, err error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	return fd, fd, err
}
