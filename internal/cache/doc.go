// Package cache owns the on-disk model directory. The root is created eagerly
// by NewStore and every artifact lives directly at Root/<name>; existence on
// disk is the only state tracked. The store exposes read primitives for the
// resolver (Stat, List) and an atomic write primitive (temp file + rename) for
// fetch sources, so an interrupted download never leaves a partial artifact
// under its final name. Nothing here evicts, hashes or expires entries.
package cache
