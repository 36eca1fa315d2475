// Package handlers implements the HTTP API: path validation, directory
// scanning, search, thumbnail serving, cache and accelerator management, and
// system information.
package handlers
