//go:build unix

package system

import "golang.org/x/sys/unix"

const openFileTarget = 2048

// RaiseOpenFileLimit lifts the soft open-file limit towards 2048, capped
// by the hard limit. It returns the limit in effect.
func RaiseOpenFileLimit() (uint64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, err
	}
	if lim.Cur >= openFileTarget {
		return lim.Cur, nil
	}
	lim.Cur = min(openFileTarget, lim.Max)
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, err
	}
	return lim.Cur, nil
}
