// Package keyring stores the daemon's RPC token in the operating system's
// native keyring, with a file-based fallback for headless hosts.
package keyring

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenFileName = "rpc.token"
	tokenFileMode = 0600
)

// FileTokenStore keeps the token as a hex string in a 0600 file when the
// system keyring is unavailable.
type FileTokenStore struct {
	configDir string
}

var (
	fileReadFile    = os.ReadFile
	fileRemove      = os.Remove
	fileRename      = os.Rename
	fileMkdirAll    = os.MkdirAll
	fileTempFile    = os.CreateTemp
	fileTempFileDir = ""
)

// NewFileTokenStore returns a store keeping the token under configDir.
func NewFileTokenStore(configDir string) *FileTokenStore {
	return &FileTokenStore{
		configDir: configDir,
	}
}

func (f *FileTokenStore) tokenPath() string {
	return filepath.Join(f.configDir, tokenFileName)
}

// SetToken generates a new token and writes it atomically through a
// temporary file and rename.
func (f *FileTokenStore) SetToken() (string, error) {
	if err := fileMkdirAll(f.configDir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	dir := f.configDir
	if fileTempFileDir != "" {
		dir = fileTempFileDir
	}
	tmpFile, err := fileTempFile(dir, ".rpc.token.tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.WriteString(token); err != nil {
		tmpFile.Close()
		fileRemove(tmpPath)
		return "", fmt.Errorf("write token: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		fileRemove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, tokenFileMode); err != nil {
		fileRemove(tmpPath)
		return "", fmt.Errorf("set permissions: %w", err)
	}
	if err := fileRename(tmpPath, f.tokenPath()); err != nil {
		fileRemove(tmpPath)
		return "", fmt.Errorf("rename token file: %w", err)
	}
	return token, nil
}

// GetToken reads the stored token. A missing file returns an error
// satisfying os.IsNotExist.
func (f *FileTokenStore) GetToken() (string, error) {
	data, err := fileReadFile(f.tokenPath())
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if err := checkToken(token); err != nil {
		return "", err
	}
	return token, nil
}

// DeleteToken removes the token file.
func (f *FileTokenStore) DeleteToken() error {
	return fileRemove(f.tokenPath())
}
