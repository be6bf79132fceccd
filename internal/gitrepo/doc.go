// Package gitrepo wraps the git operations the auto-commit workflow performs inside a repository.
package gitrepo
