package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
)

const tokenFileMode = 0o600

// FileStore keeps the token in a file readable only by the current user.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultTokenPath is ~/.config/voxsyn/token, falling back to the working directory.
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".voxsyn", "token")
	}
	return filepath.Join(dir, "voxsyn", "token")
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get() (string, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.NewLogger(context.Background()).Warnf("reading credential file %s: %v", f.path, err)
		}
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

func (f *FileStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyCredential
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return utils.WrapIfNotNil(err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), tokenFileMode); err != nil {
		return utils.WrapIfNotNil(err)
	}
	// WriteFile keeps the mode of an existing file
	return utils.WrapIfNotNil(os.Chmod(f.path, tokenFileMode))
}

// Clear removes the stored token. Clearing a missing file is not an error.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return utils.WrapIfNotNil(err)
}
