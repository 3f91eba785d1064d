package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// daemonize detaches the current process from its controlling terminal: it
// starts a new session via setsid(2) and redirects stdin/stdout/stderr to
// /dev/null. Go cannot fork(2) safely after the runtime has started
// goroutines, so this is a detach rather than the traditional
// fork-then-parent-exits sequence; the listener is already bound by the
// time this runs.
func daemonize() error {
	if _, err := unix.Setsid(); err != nil {
		return fmt.Errorf("setsid: %w", err)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	fd := int(devNull.Fd())
	for _, dst := range []int{unix.Stdin, unix.Stdout, unix.Stderr} {
		if err := unix.Dup2(fd, dst); err != nil {
			return fmt.Errorf("dup2 onto fd %d: %w", dst, err)
		}
	}

	return nil
}
