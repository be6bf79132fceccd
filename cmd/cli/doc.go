// Package cli assembles the autogit command-line application from its configuration, logging, and command builders.
package cli
