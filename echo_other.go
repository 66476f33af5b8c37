//go:build !linux && !darwin

package termrender

import "errors"

func disableEcho(_ int) (func(), error) {
	return nil, errors.New("echo suppression not supported on this platform")
}
