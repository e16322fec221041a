//go:build windows

package inject

import "fmt"

// execImage is unreachable on Windows: runReplacingProcess degrades to
// spawnAndWait before ever calling it, since Windows has no process-image
// replacement primitive equivalent to exec(2).
func execImage(bin string, argv []string, env []string) error {
	return fmt.Errorf("process replacement unsupported on windows")
}
