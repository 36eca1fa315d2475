// Package scanner walks user-selected directories, classifies media files,
// drives thumbnail generation through a bounded worker pool and keeps the
// per-session scan results that search queries run against.
//
// Sessions are in-memory only. A session holds the last completed scan for
// its ID; concurrent scans against the same ID both run to completion and the
// later writer wins.
package scanner
