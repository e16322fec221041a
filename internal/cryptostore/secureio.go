package cryptostore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxScopedFileSize bounds how much plaintext ReadFileScoped will return for
// a single --file secret. A secret value lives fully in memory and is
// re-encrypted as a single age payload, so there is no streaming path for
// anything larger than this.
const MaxScopedFileSize = 1 << 20 // 1 MiB

// ReadFileScoped reads the file backing a user-supplied --file secret path.
// It opens the file's parent directory as an os.Root and reads the base
// name from within that root, so a path containing ".." cannot escape the
// directory the caller actually named, and it rejects anything over
// MaxScopedFileSize before pulling the whole file into memory.
func ReadFileScoped(path string) ([]byte, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" {
		return nil, fmt.Errorf("path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	f, err := root.Open(base)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxScopedFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxScopedFileSize {
		return nil, fmt.Errorf("%s: exceeds the %d byte limit for a secret file", path, int64(MaxScopedFileSize))
	}
	return data, nil
}
