// Package models resolves logical model names to local files. A Manager owns
// one cache root: Ensure returns the cached path when present and otherwise
// delegates a single download to a fetch.Fetcher, and List enumerates the
// artifacts already on disk. Every failure degrades to "absent" and is only
// reported through the injected logger.
package models
