//go:build linux || darwin

package scheduler

import "golang.org/x/sys/unix"

// fdWakeup is a cross-thread wakeup primitive backed by an eventfd (Linux)
// or self-pipe (Darwin). Thread.Interrupt signals it alongside the Thread's
// in-process wake channel; a per-Thread goroutine (forwardWakeFD) blocks in
// Wait and relays each wakeup onto the channel the idle fiber selects on.
type fdWakeup struct {
	read, write int
	buf         [8]byte
}

func newFDWakeup() (*fdWakeup, error) {
	r, w, err := createWakeFD()
	if err != nil {
		return nil, err
	}
	return &fdWakeup{read: r, write: w}, nil
}

// Signal wakes one blocked Wait call (or, if none is blocked, leaves a
// pending signal for the next Wait).
func (w *fdWakeup) Signal() {
	one := [8]byte{1}
	_, _ = unix.Write(w.write, one[:])
}

// Drain clears any pending signal without blocking.
func (w *fdWakeup) Drain() {
	for {
		_, err := unix.Read(w.read, w.buf[:])
		if err != nil {
			return
		}
	}
}

// Wait blocks until Signal has been called at least once since the last
// Wait or Drain, then clears the pending signal. The fd stays non-blocking
// throughout; Wait supplies the blocking behavior itself via poll(2), the
// standard self-pipe idiom, so a concurrent Drain or Close from another
// goroutine can never leave it stuck in a blocking read.
func (w *fdWakeup) Wait() error {
	fds := []unix.PollFd{{Fd: int32(w.read), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n > 0 {
			w.Drain()
			return nil
		}
	}
}

func (w *fdWakeup) Close() error {
	err := unix.Close(w.read)
	if w.write != w.read {
		if err2 := unix.Close(w.write); err == nil {
			err = err2
		}
	}
	return err
}
