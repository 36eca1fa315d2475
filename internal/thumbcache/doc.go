// Package thumbcache tracks generated thumbnail files on disk and enforces
// size, count and age ceilings over them.
//
// The cache is an in-memory index over real files. The index is persisted as
// a best-effort JSON snapshot next to the artifacts; losing the snapshot
// loses bookkeeping, not thumbnails, and a fresh index simply rebuilds as
// files are regenerated. Cleanup runs in two passes: expired entries first,
// then LRU eviction down to 80% of the ceilings so cleanups do not fire on
// every insert at the boundary.
package thumbcache
