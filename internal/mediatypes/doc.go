// Package mediatypes defines the extension classification tables used to
// decide which files count as media during a scan, and the MIME types used
// when serving them.
package mediatypes
