package fsaccess

import (
	"io/fs"
	"os"
	"path/filepath"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
)

// FileSystem exposes the filesystem operations repository processing depends on.
type FileSystem interface {
	// Stat retrieves file metadata.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile reads file contents.
	ReadFile(path string) ([]byte, error)
	// Abs resolves an absolute path.
	Abs(path string) (string, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// NewOSFileSystem constructs the operating system backed filesystem.
func NewOSFileSystem() OSFileSystem {
	return OSFileSystem{}
}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// DirectoryExists reports whether the path names an existing directory.
func DirectoryExists(fileSystem FileSystem, path string) bool {
	pathInformation, statError := fileSystem.Stat(path)
	if statError != nil {
		return false
	}
	return pathInformation.IsDir()
}

// GitMetadataPresent reports whether the directory carries git metadata.
// Both regular repositories (.git directory) and worktrees or submodules
// (.git file) qualify.
func GitMetadataPresent(fileSystem FileSystem, repositoryPath string) bool {
	metadataPath := filepath.Join(repositoryPath, gitMetadataDirectoryNameConstant)
	_, statError := fileSystem.Stat(metadataPath)
	return statError == nil
}
