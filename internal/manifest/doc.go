// Package manifest loads the JSON document that names the repositories to process.
package manifest
