// Package fsaccess abstracts filesystem inspection so repository validation can be tested without touching disk.
package fsaccess
