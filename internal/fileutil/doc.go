// Package fileutil centralizes the filesystem scanning the catalog needs
// to discover persisted tables inside a persistence directory.
//
// # Purpose
//
// Catalog discovery (spec §4.3, §6) enumerates files with the
// ".meta.json" suffix inside a single flat directory and ignores any
// in-progress ".tmp" sibling left by an atomic write. ListFilesWithSuffix
// is the sole entry point; it is deliberately narrower than a general
// directory walker since the catalog never recurses or filters by regex.
package fileutil
