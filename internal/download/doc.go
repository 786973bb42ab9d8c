// Package download defines the in-memory job model and the registry that
// tracks every download for the lifetime of the daemon. The registry also
// owns the per-client and global admission counters so that rate limiting
// and job state share one lock domain.
package download
