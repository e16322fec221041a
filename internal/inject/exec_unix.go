//go:build !windows

package inject

import "syscall"

// execImage replaces the current process image with bin, argv, and env.
// On success this never returns.
func execImage(bin string, argv []string, env []string) error {
	return syscall.Exec(bin, argv, env)
}
