package derive

import (
	"io/fs"

	"github.com/spf13/afero"
)

// FileSystem is the only side-effecting dependency of derivation: listing
// a directory and checking that a directory exists.
type FileSystem interface {
	ListDir(dir string) ([]fs.FileInfo, error)
	DirExists(dir string) (bool, error)
}

type aferoFileSystem struct {
	fs afero.Fs
}

// NewFileSystem adapts an afero filesystem. Use afero.NewOsFs() for the
// real disk and afero.NewMemMapFs() for in-memory listings.
func NewFileSystem(fsys afero.Fs) FileSystem {
	return &aferoFileSystem{fs: fsys}
}

// OSFileSystem returns a FileSystem reading the local disk.
func OSFileSystem() FileSystem {
	return NewFileSystem(afero.NewOsFs())
}

func (a *aferoFileSystem) ListDir(dir string) ([]fs.FileInfo, error) {
	return afero.ReadDir(a.fs, dir)
}

func (a *aferoFileSystem) DirExists(dir string) (bool, error) {
	return afero.DirExists(a.fs, dir)
}
