// Package storage writes downloaded pin assets to the output directory.
//
// Writes go through a temporary file in the same directory followed by a
// rename, so readers never observe a half-written asset and a failed write
// leaves nothing behind under the final name. OS errors are translated into
// write failures with a permission, disk_full, path_invalid or io cause.
package storage
