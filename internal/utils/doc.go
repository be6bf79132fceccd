// Package utils provides logging, configuration loading, and context helpers shared across commands.
package utils
