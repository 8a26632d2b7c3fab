// Package fetch implements the remote side of the model cache: a Fetcher
// downloads one file of a remote repository into a local directory and
// reports where it landed. Sources register themselves by kind in init()
// (see Register); New returns ErrUnavailable when a kind is not compiled in,
// which callers treat as "no download capability" rather than a fetch fault.
//
// A fetch is a single best-effort attempt. Retries, resume and checksum
// verification are deliberately absent.
package fetch
