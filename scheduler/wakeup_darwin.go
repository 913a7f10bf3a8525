//go:build darwin

package scheduler

import "golang.org/x/sys/unix"

// createWakeFD creates a non-blocking self-pipe for cross-thread wakeup
// (Darwin has no eventfd).
func createWakeFD() (read, write int, err error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return 0, 0, err
		}
	}
	return fds[0], fds[1], nil
}
