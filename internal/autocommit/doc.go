// Package autocommit walks a manifest of repositories and commits and pushes pending changes in each one.
package autocommit
