//go:build !unix

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
)

// lockDataDir creates dir/ptimer.lock exclusively. A stale file left by a
// crash has to be removed by hand.
func lockDataDir(dir string) (release func() error, err error) {
	path := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("daemon: create lock file: %w", err)
	}
	return func() error {
		f.Close()
		return os.Remove(path)
	}, nil
}
