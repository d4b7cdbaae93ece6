package surface

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
)

// File is a notes file on disk; a missing file counts as detached.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) AppendText(ctx context.Context, text string) error {
	if f == nil || f.path == "" {
		return ErrDetached
	}
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrDetached
		}
		return utils.WrapIfNotNil(err)
	}
	if info.IsDir() {
		return ErrDetached
	}

	existing, err := os.ReadFile(f.path)
	if err != nil {
		return utils.WrapIfNotNil(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return utils.WrapIfNotNil(err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(JoinText(string(existing), text) + "\n"); err != nil {
		_ = tmp.Close()
		return utils.WrapIfNotNil(err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return utils.WrapIfNotNil(err)
	}
	if err := tmp.Close(); err != nil {
		return utils.WrapIfNotNil(err)
	}
	return utils.WrapIfNotNil(os.Rename(tmpName, f.path))
}
