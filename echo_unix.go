//go:build linux || darwin

package termrender

import "golang.org/x/sys/unix"

// disableEcho turns off input echo on the terminal at fd and returns a
// restore function. The terminal stays in cooked mode otherwise, so signals
// like SIGINT keep working during animation.
func disableEcho(fd int) (restore func(), err error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}
	saved := *termios

	termios.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, termios); err != nil {
		return nil, err
	}
	return func() {
		unix.IoctlSetTermios(fd, ioctlWriteTermios, &saved)
	}, nil
}
