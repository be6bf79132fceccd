// Package execshell executes external git commands while logging lifecycle
// events and normalizing failures into typed errors.
package execshell
