package mocks

import (
	"fmt"

	"github.com/user/slidecap/pkg/ports"
)

// FileSystem is an in-memory mock implementation of ports.FileSystem.
type FileSystem struct {
	WriteFileFunc func(path string, data []byte) error
	RenameFunc    func(oldpath, newpath string) error

	// Files holds the written contents by path.
	Files map[string][]byte
	// Dirs records MkdirAll calls.
	Dirs []string
	// Renames records Rename calls as [2]string{old, new}.
	Renames [][2]string
}

// NewFileSystem creates an empty in-memory filesystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{Files: map[string][]byte{}}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	data, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("mock fs: %s does not exist", path)
	}
	return data, nil
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		if err := m.WriteFileFunc(path, data); err != nil {
			return err
		}
	}
	m.Files[path] = append([]byte(nil), data...)
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	m.Dirs = append(m.Dirs, path)
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	_, ok := m.Files[path]
	return ok, nil
}

func (m *FileSystem) Rename(oldpath, newpath string) error {
	m.Renames = append(m.Renames, [2]string{oldpath, newpath})
	if m.RenameFunc != nil {
		if err := m.RenameFunc(oldpath, newpath); err != nil {
			return err
		}
	}
	data, ok := m.Files[oldpath]
	if !ok {
		return fmt.Errorf("mock fs: %s does not exist", oldpath)
	}
	delete(m.Files, oldpath)
	m.Files[newpath] = data
	return nil
}

func (m *FileSystem) Remove(path string) error {
	delete(m.Files, path)
	return nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
